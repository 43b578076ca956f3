package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	DuckDB   Dialect = "duckdb"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Opener hands out a fresh connection pool for a single unit of work. Callers
// own the returned handle and must close it.
type Opener func(ctx context.Context) (*sql.DB, error)

func ParseDialect(raw string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(raw))) {
	case SQLite, "sqlite3":
		return SQLite, nil
	case DuckDB:
		return DuckDB, nil
	case Postgres, "postgresql", "pgx":
		return Postgres, nil
	case MySQL, "mariadb":
		return MySQL, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", raw)
	}
}

func (d Dialect) DriverName() string {
	switch d {
	case SQLite:
		return "sqlite"
	case DuckDB:
		return "duckdb"
	case Postgres:
		return "pgx"
	case MySQL:
		return "mysql"
	default:
		return ""
	}
}

func NewOpener(dialect Dialect, dsn string) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		driver := dialect.DriverName()
		if driver == "" {
			return nil, fmt.Errorf("unsupported database dialect %q", dialect)
		}
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", dialect, err)
		}
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping %s database: %w", dialect, err)
		}
		return db, nil
	}
}

func Check(open Opener) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if open == nil {
			return fmt.Errorf("database opener is not configured")
		}
		db, err := open(ctx)
		if err != nil {
			return err
		}
		return db.Close()
	}
}
