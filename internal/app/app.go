// Package app assembles the question-answering pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/askdb/askdb/internal/ask"
	"github.com/askdb/askdb/internal/audit"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/nl2sql"
	"github.com/askdb/askdb/internal/query"
	"github.com/askdb/askdb/internal/schema"
	s3store "github.com/askdb/askdb/internal/storage/s3"
)

var ErrAPIKeyMissing = errors.New("ASKDB_AI_API_KEY is required")

type App struct {
	Service *ask.Service
	// DatabaseCheck pings the configured database.
	DatabaseCheck func(ctx context.Context) error
	// StorageCheck is nil unless the audit sink is enabled.
	StorageCheck func(ctx context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if strings.TrimSpace(cfg.AI.APIKey) == "" {
		return nil, ErrAPIKeyMissing
	}
	dialect, err := database.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return nil, err
	}
	open := database.NewOpener(dialect, cfg.Database.DSN)

	completer, err := nl2sql.NewOpenAICompleter(nl2sql.CompletionConfig{
		Endpoint:    cfg.AI.Endpoint,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		TopP:        cfg.AI.TopP,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize completer: %w", err)
	}
	translator, err := nl2sql.NewModelTranslator(completer, nl2sql.HeuristicExtractor{}, completer.Model())
	if err != nil {
		return nil, fmt.Errorf("initialize translator: %w", err)
	}

	opts := []query.Option{
		query.WithTimeout(cfg.Query.Timeout),
		query.WithMaxRows(cfg.Query.MaxRows),
		query.WithLogger(logger),
	}
	if cfg.Query.ReadOnly {
		opts = append(opts, query.WithGuard(query.ReadOnlyGuard{}))
	}

	a := &App{DatabaseCheck: database.Check(open)}
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		store, err := s3store.New(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, fmt.Errorf("initialize audit store: %w", err)
		}
		objectRecorder, err := audit.NewObjectStoreRecorder(store)
		if err != nil {
			return nil, fmt.Errorf("initialize audit recorder: %w", err)
		}
		recorder = objectRecorder
		a.StorageCheck = store.CheckBucket
	}

	a.Service, err = ask.NewService(ask.Config{
		Inspector:  schema.NewInspector(dialect, open),
		Translator: translator,
		Engine:     query.NewExecutor(open, opts...),
		Recorder:   recorder,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
