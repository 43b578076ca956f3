package schema

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/askdb/askdb/internal/database"
)

func mockOpener(t *testing.T) (database.Opener, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return func(context.Context) (*sql.DB, error) { return db, nil }, mock
}

func TestInspectSQLiteReturnsDDLInCatalogOrder(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "shop.db")
	open := database.NewOpener(database.SQLite, dsn)
	db, err := open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	statements := []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)",
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER, total REAL)",
		"CREATE VIEW big_orders AS SELECT * FROM orders WHERE total > 100",
		"CREATE INDEX idx_orders_user ON orders(user_id)",
	}
	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			t.Fatalf("exec %q: %v", statement, err)
		}
	}
	_ = db.Close()

	got, err := NewInspector(database.SQLite, open).Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	want := strings.Join(statements[:3], "\n")
	if got != want {
		t.Fatalf("Inspect() = %q\nwant %q", got, want)
	}
}

func TestInspectSQLiteEmptyDatabase(t *testing.T) {
	open := database.NewOpener(database.SQLite, filepath.Join(t.TempDir(), "empty.db"))
	got, err := NewInspector(database.SQLite, open).Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if got != "" {
		t.Fatalf("Inspect() = %q, want empty", got)
	}
}

func TestInspectPostgresUsesCatalogQuery(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery(postgresCatalogQuery).WillReturnRows(
		sqlmock.NewRows([]string{"sql"}).
			AddRow("CREATE TABLE public.users (\n  id integer NOT NULL\n);").
			AddRow("CREATE VIEW public.active AS\n SELECT 1;"),
	)
	mock.ExpectClose()

	got, err := NewInspector(database.Postgres, open).Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if !strings.HasPrefix(got, "CREATE TABLE public.users") || !strings.Contains(got, ");\nCREATE VIEW public.active") {
		t.Fatalf("Inspect() = %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInspectSkipsNullDefinitions(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery(duckdbCatalogQuery).WillReturnRows(
		sqlmock.NewRows([]string{"sql"}).AddRow(nil).AddRow("CREATE TABLE t(a INTEGER);"),
	)
	mock.ExpectClose()

	got, err := NewInspector(database.DuckDB, open).Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if got != "CREATE TABLE t(a INTEGER);" {
		t.Fatalf("Inspect() = %q", got)
	}
}

func TestInspectMySQLShowCreate(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery(mysqlObjectsQuery).WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "table_type"}).
			AddRow("orders", "BASE TABLE").
			AddRow("recent", "VIEW"),
	)
	mock.ExpectQuery("SHOW CREATE TABLE `orders`").WillReturnRows(
		sqlmock.NewRows([]string{"Table", "Create Table"}).AddRow("orders", "CREATE TABLE `orders` (`id` int)"),
	)
	mock.ExpectQuery("SHOW CREATE VIEW `recent`").WillReturnRows(
		sqlmock.NewRows([]string{"View", "Create View", "character_set_client", "collation_connection"}).
			AddRow("recent", "CREATE VIEW `recent` AS select 1", "utf8mb4", "utf8mb4_general_ci"),
	)
	mock.ExpectClose()

	got, err := NewInspector(database.MySQL, open).Inspect(context.Background())
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	want := "CREATE TABLE `orders` (`id` int)\nCREATE VIEW `recent` AS select 1"
	if got != want {
		t.Fatalf("Inspect() = %q, want %q", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInspectFailuresAreErrorsNotSchemaText(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery(sqliteCatalogQuery).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectClose()

	got, err := NewInspector(database.SQLite, open).Inspect(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got != "" {
		t.Fatalf("Inspect() returned schema text %q alongside error", got)
	}
	if !strings.Contains(err.Error(), "disk I/O error") {
		t.Fatalf("error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("connection should be closed on failure: %v", err)
	}
}

func TestInspectOpenFailure(t *testing.T) {
	open := func(context.Context) (*sql.DB, error) { return nil, errors.New("no route to host") }
	_, err := NewInspector(database.Postgres, open).Inspect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "open schema source") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestInspectUnsupportedDialect(t *testing.T) {
	open, _ := mockOpener(t)
	if _, err := NewInspector(database.Dialect("oracle"), open).Inspect(context.Background()); err == nil {
		t.Fatal("expected error for unsupported dialect")
	}
}
