package nl2sql

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestModelTranslatorComposesPromptCompletionAndExtraction(t *testing.T) {
	completer := &fakeCompleter{reply: "Here:\n```sql\nSELECT COUNT(*) FROM users;\n```"}
	translator, err := NewModelTranslator(completer, nil, "test-model")
	if err != nil {
		t.Fatalf("NewModelTranslator() error = %v", err)
	}

	result, err := translator.Translate(context.Background(), Request{
		Question: "How many users are there?",
		Schema:   "CREATE TABLE users (id INTEGER)",
	})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.SQL != "SELECT COUNT(*) FROM users;" {
		t.Fatalf("SQL = %q", result.SQL)
	}
	if result.Strategy != StrategyFenced {
		t.Fatalf("Strategy = %q", result.Strategy)
	}
	if result.Model != "test-model" || result.Reply != completer.reply {
		t.Fatalf("unexpected result: %#v", result)
	}
	if len(completer.prompts) != 1 {
		t.Fatalf("completer called %d times", len(completer.prompts))
	}
	if completer.prompts[0] != BuildPrompt("How many users are there?", "CREATE TABLE users (id INTEGER)") {
		t.Fatalf("prompt = %q", completer.prompts[0])
	}
}

func TestModelTranslatorWrapsCompletionFailures(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	translator, err := NewModelTranslator(completer, HeuristicExtractor{}, "m")
	if err != nil {
		t.Fatalf("NewModelTranslator() error = %v", err)
	}
	result, err := translator.Translate(context.Background(), Request{Question: "q"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("error lost cause: %v", err)
	}
	if result != (Result{}) {
		t.Fatalf("expected zero result, got %#v", result)
	}
}

func TestNewModelTranslatorRequiresCompleter(t *testing.T) {
	if _, err := NewModelTranslator(nil, nil, ""); err == nil {
		t.Fatal("expected error without completer")
	}
}
