package nl2sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/askdb/askdb/internal/observability"
)

// ErrModelUnavailable marks every failure to obtain a usable completion.
var ErrModelUnavailable = errors.New("model unavailable")

type Request struct {
	Question string `json:"question"`
	Schema   string `json:"schema"`
}

type Result struct {
	SQL      string   `json:"sql"`
	Reply    string   `json:"reply"`
	Strategy Strategy `json:"strategy"`
	Model    string   `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ModelTranslator struct {
	completer Completer
	extractor Extractor
	model     string
}

func NewModelTranslator(completer Completer, extractor Extractor, model string) (*ModelTranslator, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if extractor == nil {
		extractor = HeuristicExtractor{}
	}
	return &ModelTranslator{completer: completer, extractor: extractor, model: model}, nil
}

func (t *ModelTranslator) Translate(ctx context.Context, req Request) (Result, error) {
	prompt := BuildPrompt(req.Question, req.Schema)

	start := time.Now()
	reply, err := t.completer.Complete(ctx, prompt)
	observability.ObserveModelLatency(time.Since(start))
	if err != nil {
		if !errors.Is(err, ErrModelUnavailable) {
			err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		return Result{}, err
	}

	sql, strategy := extract(t.extractor, reply)
	observability.ObserveExtraction(string(strategy))
	return Result{
		SQL:      sql,
		Reply:    reply,
		Strategy: strategy,
		Model:    t.model,
	}, nil
}
