package audit

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askdb/askdb/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

// Entry describes one answered (or failed) question.
type Entry struct {
	ID           string
	At           time.Time
	TraceID      string
	Question     string
	SchemaSource string
	SQL          string
	Strategy     string
	Model        string
	Outcome      string
	Error        string
	RowCount     int
	Duration     time.Duration
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

// ObjectStoreRecorder writes each entry as its own Parquet object.
type ObjectStoreRecorder struct {
	store storage.ObjectStore
	now   func() time.Time
	newID func() string
}

func NewObjectStoreRecorder(store storage.ObjectStore) (*ObjectStoreRecorder, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	return &ObjectStoreRecorder{store: store, now: time.Now, newID: uuid.NewString}, nil
}

func (r *ObjectStoreRecorder) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = r.newID()
	}
	if entry.At.IsZero() {
		entry.At = r.now()
	}
	entry.At = entry.At.UTC()

	data, err := EncodeEntries([]Entry{entry})
	if err != nil {
		return err
	}
	key, err := storage.BuildAuditPath(entry.At, entry.ID)
	if err != nil {
		return fmt.Errorf("build audit path: %w", err)
	}
	if _, err := r.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: parquetContentType}); err != nil {
		return fmt.Errorf("write audit entry %s: %w", entry.ID, err)
	}
	return nil
}
