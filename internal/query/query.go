package query

import (
	"context"
	"encoding/json"
	"time"
)

// ErrorPrefix leads every Result.Error message.
const ErrorPrefix = "SQL execution error: "

type Request struct {
	SQL string
}

// Result is either a row set or an execution error for SQL. The JSON form has
// two shapes: {"sql","columns","rows"} and {"sql","error"}.
type Result struct {
	SQL      string
	Columns  []string
	Rows     [][]any
	Error    string
	Duration time.Duration
}

type Engine interface {
	Execute(ctx context.Context, request Request) Result
}

func (r Result) Failed() bool {
	return r.Error != ""
}

type successPayload struct {
	SQL     string   `json:"sql"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type errorPayload struct {
	SQL   string `json:"sql"`
	Error string `json:"error"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(errorPayload{SQL: r.SQL, Error: r.Error})
	}
	columns := r.Columns
	if columns == nil {
		columns = []string{}
	}
	rows := r.Rows
	if rows == nil {
		rows = [][]any{}
	}
	return json.Marshal(successPayload{SQL: r.SQL, Columns: columns, Rows: rows})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var payload struct {
		SQL     string   `json:"sql"`
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
		Error   string   `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*r = Result{SQL: payload.SQL, Columns: payload.Columns, Rows: payload.Rows, Error: payload.Error}
	return nil
}
