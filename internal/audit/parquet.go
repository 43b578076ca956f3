package audit

import (
	"bytes"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
)

type parquetEntry struct {
	ID           string `parquet:"id"`
	AtUnixMs     int64  `parquet:"at_unix_ms"`
	TraceID      string `parquet:"trace_id"`
	Question     string `parquet:"question"`
	SchemaSource string `parquet:"schema_source"`
	SQL          string `parquet:"sql"`
	Strategy     string `parquet:"strategy"`
	Model        string `parquet:"model"`
	Outcome      string `parquet:"outcome"`
	Error        string `parquet:"error"`
	RowCount     int64  `parquet:"row_count"`
	DurationMs   int64  `parquet:"duration_ms"`
}

func EncodeEntries(entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries are required")
	}

	rows := make([]parquetEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, parquetEntry{
			ID:           entry.ID,
			AtUnixMs:     entry.At.UnixMilli(),
			TraceID:      entry.TraceID,
			Question:     entry.Question,
			SchemaSource: entry.SchemaSource,
			SQL:          entry.SQL,
			Strategy:     entry.Strategy,
			Model:        entry.Model,
			Outcome:      entry.Outcome,
			Error:        entry.Error,
			RowCount:     int64(entry.RowCount),
			DurationMs:   entry.Duration.Milliseconds(),
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetEntry](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeEntries(data []byte) ([]Entry, error) {
	rows, err := parquet.Read[parquetEntry](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			ID:           row.ID,
			At:           time.UnixMilli(row.AtUnixMs).UTC(),
			TraceID:      row.TraceID,
			Question:     row.Question,
			SchemaSource: row.SchemaSource,
			SQL:          row.SQL,
			Strategy:     row.Strategy,
			Model:        row.Model,
			Outcome:      row.Outcome,
			Error:        row.Error,
			RowCount:     int(row.RowCount),
			Duration:     time.Duration(row.DurationMs) * time.Millisecond,
		})
	}
	return entries, nil
}
