package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/observability"
)

type Option func(*Executor)

func WithGuard(guard Guard) Option {
	return func(e *Executor) { e.guard = guard }
}

func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.timeout = timeout }
}

// WithMaxRows caps the rows read per query; zero or less reads everything.
func WithMaxRows(maxRows int) Option {
	return func(e *Executor) { e.maxRows = maxRows }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

type Executor struct {
	open    database.Opener
	guard   Guard
	timeout time.Duration
	maxRows int
	logger  *slog.Logger
}

func NewExecutor(open database.Opener, opts ...Option) *Executor {
	executor := &Executor{
		open:   open,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Execute never returns an error: every failure is folded into Result.Error
// alongside the SQL that was attempted.
func (e *Executor) Execute(ctx context.Context, request Request) Result {
	start := time.Now()
	result, err := e.execute(ctx, request.SQL)
	result.SQL = request.SQL
	result.Duration = time.Since(start)
	observability.ObserveQueryLatency(result.Duration)

	logger := observability.WithTrace(ctx, e.logger)
	if err != nil {
		result = Result{SQL: request.SQL, Error: ErrorPrefix + err.Error(), Duration: result.Duration}
		logger.WarnContext(ctx, "query_failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", result.Duration.Milliseconds()),
		)
		return result
	}
	logger.DebugContext(ctx, "query_executed",
		slog.Int("columns", len(result.Columns)),
		slog.Int("rows", len(result.Rows)),
		slog.Int64("duration_ms", result.Duration.Milliseconds()),
	)
	return result
}

func (e *Executor) execute(ctx context.Context, sqlText string) (Result, error) {
	if e.guard != nil {
		if err := e.guard.Check(sqlText); err != nil {
			return Result{}, err
		}
	}
	if e.open == nil {
		return Result{}, fmt.Errorf("database opener is not configured")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	db, err := e.open(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}
	if columns == nil {
		columns = []string{}
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		if e.maxRows > 0 && len(resultRows) >= e.maxRows {
			e.logger.DebugContext(ctx, "query_rows_truncated", slog.Int("max_rows", e.maxRows))
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, err
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	return Result{Columns: columns, Rows: resultRows}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		case time.Time, json.Marshaler:
			normalized[i] = typed
		case fmt.Stringer:
			normalized[i] = typed.String()
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
