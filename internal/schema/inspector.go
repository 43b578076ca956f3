package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/database"
)

const sqliteCatalogQuery = `SELECT sql FROM sqlite_master WHERE type IN ('table', 'view') AND sql IS NOT NULL`

const duckdbCatalogQuery = `SELECT sql FROM (
	SELECT sql FROM duckdb_tables() WHERE NOT internal
	UNION ALL
	SELECT sql FROM duckdb_views() WHERE NOT internal
) WHERE sql IS NOT NULL`

const postgresCatalogQuery = `SELECT CASE c.relkind
	WHEN 'v' THEN 'CREATE VIEW ' || quote_ident(n.nspname) || '.' || quote_ident(c.relname) || ' AS' || chr(10) || pg_get_viewdef(c.oid, true)
	ELSE 'CREATE TABLE ' || quote_ident(n.nspname) || '.' || quote_ident(c.relname) || ' (' || chr(10) ||
		coalesce((
			SELECT string_agg('  ' || quote_ident(a.attname) || ' ' || format_type(a.atttypid, a.atttypmod) ||
				CASE WHEN a.attnotnull THEN ' NOT NULL' ELSE '' END, ',' || chr(10) ORDER BY a.attnum)
			FROM pg_attribute a
			WHERE a.attrelid = c.oid AND a.attnum > 0 AND NOT a.attisdropped
		), '') || chr(10) || ');'
END AS sql
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE c.relkind IN ('r', 'v')
	AND n.nspname NOT IN ('pg_catalog', 'information_schema')
	AND n.nspname NOT LIKE 'pg_toast%'
ORDER BY n.nspname, c.relname`

const mysqlObjectsQuery = `SELECT table_name, table_type FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name`

type Inspector struct {
	dialect database.Dialect
	open    database.Opener
}

func NewInspector(dialect database.Dialect, open database.Opener) *Inspector {
	return &Inspector{dialect: dialect, open: open}
}

// Inspect returns the DDL of every table and view, newline separated, in the
// order the catalog yields them. An empty database yields "".
func (i *Inspector) Inspect(ctx context.Context) (string, error) {
	if i == nil || i.open == nil {
		return "", fmt.Errorf("schema inspector is not configured")
	}
	db, err := i.open(ctx)
	if err != nil {
		return "", fmt.Errorf("open schema source: %w", err)
	}
	defer func() { _ = db.Close() }()

	var definitions []string
	switch i.dialect {
	case database.MySQL:
		definitions, err = mysqlDefinitions(ctx, db)
	case database.SQLite:
		definitions, err = queryDefinitions(ctx, db, sqliteCatalogQuery)
	case database.DuckDB:
		definitions, err = queryDefinitions(ctx, db, duckdbCatalogQuery)
	case database.Postgres:
		definitions, err = queryDefinitions(ctx, db, postgresCatalogQuery)
	default:
		return "", fmt.Errorf("schema inspection not supported for dialect %q", i.dialect)
	}
	if err != nil {
		return "", err
	}
	return strings.Join(definitions, "\n"), nil
}

func queryDefinitions(ctx context.Context, db *sql.DB, catalogQuery string) ([]string, error) {
	rows, err := db.QueryContext(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("query schema catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	definitions := make([]string, 0)
	for rows.Next() {
		var definition sql.NullString
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scan schema definition: %w", err)
		}
		if definition.Valid {
			definitions = append(definitions, definition.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema catalog: %w", err)
	}
	return definitions, nil
}

type mysqlObject struct {
	name string
	view bool
}

func mysqlDefinitions(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, mysqlObjectsQuery)
	if err != nil {
		return nil, fmt.Errorf("query schema catalog: %w", err)
	}
	objects := make([]mysqlObject, 0)
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan schema object: %w", err)
		}
		objects = append(objects, mysqlObject{name: name, view: strings.EqualFold(tableType, "VIEW")})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate schema catalog: %w", err)
	}
	_ = rows.Close()

	definitions := make([]string, 0, len(objects))
	for _, object := range objects {
		definition, err := mysqlShowCreate(ctx, db, object)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}
	return definitions, nil
}

// SHOW CREATE TABLE yields two columns and SHOW CREATE VIEW four; the DDL is
// always the second.
func mysqlShowCreate(ctx context.Context, db *sql.DB, object mysqlObject) (string, error) {
	kind := "TABLE"
	if object.view {
		kind = "VIEW"
	}
	statement := fmt.Sprintf("SHOW CREATE %s %s", kind, quoteMySQLIdent(object.name))
	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		return "", fmt.Errorf("show create %s %q: %w", strings.ToLower(kind), object.name, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("show create columns %q: %w", object.name, err)
	}
	if len(columns) < 2 {
		return "", fmt.Errorf("show create %q returned %d columns", object.name, len(columns))
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("show create %q: %w", object.name, err)
		}
		return "", fmt.Errorf("show create %q returned no rows", object.name)
	}
	values := make([]sql.NullString, len(columns))
	targets := make([]any, len(columns))
	for idx := range values {
		targets[idx] = &values[idx]
	}
	if err := rows.Scan(targets...); err != nil {
		return "", fmt.Errorf("scan show create %q: %w", object.name, err)
	}
	return values[1].String, nil
}

func quoteMySQLIdent(value string) string {
	return "`" + strings.ReplaceAll(value, "`", "``") + "`"
}
