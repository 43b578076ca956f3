package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/askdb/askdb/internal/config"
)

func testConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	cfg, err := config.Load("askdb-api", func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWiresPipelineForSQLite(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"ASKDB_AI_API_KEY": "test-key",
		"ASKDB_DB_DSN":     filepath.Join(t.TempDir(), "app.db"),
	})
	a, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Service == nil {
		t.Fatal("expected service")
	}
	if a.StorageCheck != nil {
		t.Fatal("storage check should be nil with audit disabled")
	}
	if err := a.DatabaseCheck(context.Background()); err != nil {
		t.Fatalf("DatabaseCheck() error = %v", err)
	}
	schemaText, err := a.Service.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}
	if schemaText != "" {
		t.Fatalf("Schema() = %q, want empty for a fresh database", schemaText)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), testConfig(t, nil), discardLogger())
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("New() error = %v, want ErrAPIKeyMissing", err)
	}
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	cfg := testConfig(t, map[string]string{"ASKDB_AI_API_KEY": "k"})
	cfg.Database.Dialect = "oracle"
	if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("expected dialect error")
	}
}

func TestNewFailsOnInvalidAuditStore(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"ASKDB_AI_API_KEY":           "k",
		"ASKDB_AUDIT_ENABLED":        "true",
		"ASKDB_OBJECTSTORE_ENDPOINT": "ftp://storage.internal",
	})
	if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("expected object store error")
	}
}
