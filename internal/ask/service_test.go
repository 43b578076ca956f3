package ask

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/askdb/askdb/internal/audit"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/nl2sql"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/query"
	"github.com/askdb/askdb/internal/schema"
)

type fakeInspector struct {
	schema string
	err    error
	calls  int
}

func (f *fakeInspector) Inspect(context.Context) (string, error) {
	f.calls++
	return f.schema, f.err
}

type fakeTranslator struct {
	result   nl2sql.Result
	err      error
	requests []nl2sql.Request
}

func (f *fakeTranslator) Translate(_ context.Context, req nl2sql.Request) (nl2sql.Result, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

type fakeEngine struct {
	result   query.Result
	requests []query.Request
}

func (f *fakeEngine) Execute(_ context.Context, req query.Request) query.Result {
	f.requests = append(f.requests, req)
	result := f.result
	result.SQL = req.SQL
	return result
}

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

type fakeCompleter struct {
	reply string
	err   error
}

func (f fakeCompleter) Complete(context.Context, string) (string, error) {
	return f.reply, f.err
}

func newTestService(t *testing.T, inspector SchemaSource, translator nl2sql.Translator, engine query.Engine, recorder audit.Recorder) *Service {
	t.Helper()
	service, err := NewService(Config{Inspector: inspector, Translator: translator, Engine: engine, Recorder: recorder})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return service
}

func TestAskBlankQuestionCallsNothing(t *testing.T) {
	inspector := &fakeInspector{}
	translator := &fakeTranslator{}
	engine := &fakeEngine{}
	recorder := &fakeRecorder{}
	service := newTestService(t, inspector, translator, engine, recorder)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := service.Ask(context.Background(), Question{Text: text})
		if !IsKind(err, KindInvalidQuestion) {
			t.Fatalf("Ask(%q) error = %v, want invalid question", text, err)
		}
		if !errors.Is(err, ErrBlankQuestion) {
			t.Fatalf("Ask(%q) error does not wrap ErrBlankQuestion", text)
		}
	}
	if inspector.calls != 0 || len(translator.requests) != 0 || len(engine.requests) != 0 || len(recorder.entries) != 0 {
		t.Fatal("downstream components were called for a blank question")
	}
}

func TestAskRunsPipeline(t *testing.T) {
	inspector := &fakeInspector{schema: "CREATE TABLE users (id INTEGER)"}
	translator := &fakeTranslator{result: nl2sql.Result{SQL: "SELECT COUNT(*) FROM users;", Strategy: nl2sql.StrategyFenced, Model: "m"}}
	engine := &fakeEngine{result: query.Result{Columns: []string{"COUNT(*)"}, Rows: [][]any{{int64(3)}}}}
	recorder := &fakeRecorder{}
	service := newTestService(t, inspector, translator, engine, recorder)

	ctx := observability.ContextWithTraceID(context.Background(), "trace-9")
	result, err := service.Ask(ctx, Question{Text: "  How many users are there?  "})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if result.SQL != "SELECT COUNT(*) FROM users;" || len(result.Rows) != 1 {
		t.Fatalf("result = %#v", result)
	}
	if translator.requests[0].Question != "How many users are there?" {
		t.Fatalf("question = %q", translator.requests[0].Question)
	}
	if translator.requests[0].Schema != inspector.schema {
		t.Fatalf("schema = %q", translator.requests[0].Schema)
	}
	if engine.requests[0].SQL != "SELECT COUNT(*) FROM users;" {
		t.Fatalf("executed SQL = %q", engine.requests[0].SQL)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("audit entries = %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Outcome != observability.OutcomeOK || entry.TraceID != "trace-9" || entry.SchemaSource != SchemaSourceInspector || entry.RowCount != 1 || entry.Strategy != "fenced" {
		t.Fatalf("audit entry = %#v", entry)
	}
}

func TestAskSchemaOverrideSkipsInspector(t *testing.T) {
	inspector := &fakeInspector{err: errors.New("should not be called")}
	translator := &fakeTranslator{result: nl2sql.Result{SQL: "SELECT 1"}}
	service := newTestService(t, inspector, translator, &fakeEngine{}, nil)

	if _, err := service.Ask(context.Background(), Question{Text: "q", SchemaOverride: "CREATE TABLE t (a INT)"}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if inspector.calls != 0 {
		t.Fatal("inspector called despite schema override")
	}
	if translator.requests[0].Schema != "CREATE TABLE t (a INT)" {
		t.Fatalf("schema = %q", translator.requests[0].Schema)
	}
}

func TestAskSchemaFailureShortCircuits(t *testing.T) {
	inspector := &fakeInspector{err: errors.New("database is locked")}
	translator := &fakeTranslator{}
	engine := &fakeEngine{}
	recorder := &fakeRecorder{}
	service := newTestService(t, inspector, translator, engine, recorder)

	result, err := service.Ask(context.Background(), Question{Text: "q"})
	if !IsKind(err, KindSchemaFetch) {
		t.Fatalf("Ask() error = %v, want schema fetch", err)
	}
	if !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("error lost cause: %v", err)
	}
	if result.SQL != "" || result.Error != "" {
		t.Fatalf("result = %#v", result)
	}
	if len(translator.requests) != 0 || len(engine.requests) != 0 {
		t.Fatal("pipeline continued after schema failure")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Outcome != observability.OutcomeSchemaFetch {
		t.Fatalf("audit entries = %#v", recorder.entries)
	}
}

func TestAskModelFailureNeverExecutes(t *testing.T) {
	translator, err := nl2sql.NewModelTranslator(fakeCompleter{err: errors.New("503 from upstream")}, nil, "m")
	if err != nil {
		t.Fatalf("NewModelTranslator() error = %v", err)
	}
	engine := &fakeEngine{}
	service := newTestService(t, &fakeInspector{schema: "s"}, translator, engine, nil)

	_, err = service.Ask(context.Background(), Question{Text: "q"})
	if !IsKind(err, KindModelUnavailable) {
		t.Fatalf("Ask() error = %v, want model unavailable", err)
	}
	if !errors.Is(err, nl2sql.ErrModelUnavailable) {
		t.Fatalf("error does not wrap nl2sql.ErrModelUnavailable: %v", err)
	}
	if len(engine.requests) != 0 {
		t.Fatal("executor called after model failure")
	}
}

func TestAskQueryErrorIsNotAnError(t *testing.T) {
	engine := &fakeEngine{result: query.Result{Error: query.ErrorPrefix + "no such table: users"}}
	recorder := &fakeRecorder{}
	service := newTestService(t, &fakeInspector{}, &fakeTranslator{result: nl2sql.Result{SQL: "SELECT * FROM users"}}, engine, recorder)

	result, err := service.Ask(context.Background(), Question{Text: "q"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !result.Failed() || result.SQL != "SELECT * FROM users" {
		t.Fatalf("result = %#v", result)
	}
	if recorder.entries[0].Outcome != observability.OutcomeQueryError {
		t.Fatalf("audit outcome = %q", recorder.entries[0].Outcome)
	}
}

func TestAskAuditFailureDoesNotFailRequest(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("bucket unreachable")}
	service := newTestService(t, &fakeInspector{}, &fakeTranslator{result: nl2sql.Result{SQL: "SELECT 1"}}, &fakeEngine{}, recorder)
	if _, err := service.Ask(context.Background(), Question{Text: "q"}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}

func TestSchemaWrapsInspectorFailure(t *testing.T) {
	service := newTestService(t, &fakeInspector{err: errors.New("boom")}, &fakeTranslator{}, &fakeEngine{}, nil)
	if _, err := service.Schema(context.Background()); !IsKind(err, KindSchemaFetch) {
		t.Fatalf("Schema() error = %v", err)
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(Config{Translator: &fakeTranslator{}, Engine: &fakeEngine{}}); err == nil {
		t.Fatal("expected error without inspector")
	}
	if _, err := NewService(Config{Inspector: &fakeInspector{}, Engine: &fakeEngine{}}); err == nil {
		t.Fatal("expected error without translator")
	}
	if _, err := NewService(Config{Inspector: &fakeInspector{}, Translator: &fakeTranslator{}}); err == nil {
		t.Fatal("expected error without engine")
	}
}

func TestAskEndToEndAgainstSQLite(t *testing.T) {
	open := database.NewOpener(database.SQLite, filepath.Join(t.TempDir(), "ecommerce.db"))
	db, err := open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, statement := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (name) VALUES ('ada'), ('grace'), ('linus')",
	} {
		if _, err := db.Exec(statement); err != nil {
			t.Fatalf("exec %q: %v", statement, err)
		}
	}
	_ = db.Close()

	translator, err := nl2sql.NewModelTranslator(fakeCompleter{reply: "```sql\nSELECT COUNT(*) AS user_count FROM users;\n```"}, nl2sql.HeuristicExtractor{}, "m")
	if err != nil {
		t.Fatalf("NewModelTranslator() error = %v", err)
	}
	service := newTestService(t,
		schema.NewInspector(database.SQLite, open),
		translator,
		query.NewExecutor(open, query.WithGuard(query.ReadOnlyGuard{})),
		nil,
	)

	result, err := service.Ask(context.Background(), Question{Text: "How many users are there?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if result.Failed() {
		t.Fatalf("result error = %s", result.Error)
	}
	if len(result.Columns) != 1 || result.Columns[0] != "user_count" {
		t.Fatalf("columns = %#v", result.Columns)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != int64(3) {
		t.Fatalf("rows = %#v", result.Rows)
	}
	if result.SQL != "SELECT COUNT(*) AS user_count FROM users;" {
		t.Fatalf("SQL = %q", result.SQL)
	}
}
