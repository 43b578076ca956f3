package ask

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/audit"
	"github.com/askdb/askdb/internal/nl2sql"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/query"
)

const (
	SchemaSourceInspector = "inspector"
	SchemaSourceOverride  = "override"

	auditTimeout = 5 * time.Second
)

type Question struct {
	Text           string
	SchemaOverride string
}

type SchemaSource interface {
	Inspect(ctx context.Context) (string, error)
}

type Config struct {
	Inspector  SchemaSource
	Translator nl2sql.Translator
	Engine     query.Engine
	Recorder   audit.Recorder
	Logger     *slog.Logger
}

type Service struct {
	inspector  SchemaSource
	translator nl2sql.Translator
	engine     query.Engine
	recorder   audit.Recorder
	logger     *slog.Logger
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Inspector == nil {
		return nil, fmt.Errorf("schema inspector is required")
	}
	if cfg.Translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		inspector:  cfg.Inspector,
		translator: cfg.Translator,
		engine:     cfg.Engine,
		recorder:   recorder,
		logger:     logger,
	}, nil
}

// Ask runs one question through schema lookup, translation and execution.
// A returned error is always an *Error; a query that fails to execute is not
// an error and comes back as a Result with Error set.
func (s *Service) Ask(ctx context.Context, question Question) (query.Result, error) {
	start := time.Now()
	text := strings.TrimSpace(question.Text)
	if text == "" {
		observability.ObserveAsk(observability.OutcomeInvalidQuestion)
		return query.Result{}, &Error{Kind: KindInvalidQuestion, Err: ErrBlankQuestion}
	}

	logger := observability.WithTrace(ctx, s.logger)
	entry := audit.Entry{
		At:       start,
		TraceID:  observability.TraceIDFromContext(ctx),
		Question: text,
	}

	schemaText, source, err := s.schemaFor(ctx, question.SchemaOverride)
	entry.SchemaSource = source
	if err != nil {
		askErr := &Error{Kind: KindSchemaFetch, Err: err}
		s.fail(ctx, logger, entry, observability.OutcomeSchemaFetch, askErr, start)
		return query.Result{}, askErr
	}

	translation, err := s.translator.Translate(ctx, nl2sql.Request{Question: text, Schema: schemaText})
	if err != nil {
		askErr := &Error{Kind: KindModelUnavailable, Err: err}
		s.fail(ctx, logger, entry, observability.OutcomeModelUnavailable, askErr, start)
		return query.Result{}, askErr
	}
	entry.SQL = translation.SQL
	entry.Strategy = string(translation.Strategy)
	entry.Model = translation.Model

	result := s.engine.Execute(ctx, query.Request{SQL: translation.SQL})

	outcome := observability.OutcomeOK
	if result.Failed() {
		outcome = observability.OutcomeQueryError
		entry.Error = result.Error
	}
	entry.Outcome = outcome
	entry.RowCount = len(result.Rows)
	entry.Duration = time.Since(start)
	observability.ObserveAsk(outcome)
	logger.InfoContext(ctx, "ask_completed",
		slog.String("outcome", outcome),
		slog.String("schema_source", source),
		slog.String("strategy", entry.Strategy),
		slog.Int("rows", entry.RowCount),
		slog.Int64("duration_ms", entry.Duration.Milliseconds()),
	)
	s.record(ctx, logger, entry)
	return result, nil
}

// Schema returns the schema text the pipeline would send to the model.
func (s *Service) Schema(ctx context.Context) (string, error) {
	schemaText, err := s.inspector.Inspect(ctx)
	if err != nil {
		return "", &Error{Kind: KindSchemaFetch, Err: err}
	}
	return schemaText, nil
}

func (s *Service) schemaFor(ctx context.Context, override string) (string, string, error) {
	if strings.TrimSpace(override) != "" {
		return override, SchemaSourceOverride, nil
	}
	schemaText, err := s.inspector.Inspect(ctx)
	if err != nil {
		return "", SchemaSourceInspector, err
	}
	return schemaText, SchemaSourceInspector, nil
}

func (s *Service) fail(ctx context.Context, logger *slog.Logger, entry audit.Entry, outcome string, err error, start time.Time) {
	entry.Outcome = outcome
	entry.Error = err.Error()
	entry.Duration = time.Since(start)
	observability.ObserveAsk(outcome)
	logger.WarnContext(ctx, "ask_failed",
		slog.String("outcome", outcome),
		slog.String("schema_source", entry.SchemaSource),
		slog.String("error", err.Error()),
		slog.Int64("duration_ms", entry.Duration.Milliseconds()),
	)
	s.record(ctx, logger, entry)
}

func (s *Service) record(ctx context.Context, logger *slog.Logger, entry audit.Entry) {
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.recorder.Record(auditCtx, entry); err != nil {
		observability.IncrementAuditWriteFailure()
		logger.ErrorContext(ctx, "audit_write_failed", slog.String("error", err.Error()))
	}
}
