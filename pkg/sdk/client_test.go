package surveyd

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/surveyd/internal/domain"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

const description = `{"description": "Loves cats, prefers short fur."}`

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), optionFunc(func(c *clientConfig) { c.driver = "unknown" }))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	if c.store != nil {
		t.Error("memory driver should not own a store")
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithMongo("mongodb://localhost:27017", "survey_db", "surveys").apply(cfg)
	if cfg.driver != driverMongo {
		t.Errorf("driver = %q, want mongo", cfg.driver)
	}
	if cfg.mongoURI != "mongodb://localhost:27017" || cfg.database != "survey_db" || cfg.collection != "surveys" {
		t.Errorf("mongo config = %+v", cfg)
	}

	WithSQLite("data/x.db").apply(cfg)
	if cfg.driver != driverSQLite || cfg.sqlitePath != "data/x.db" {
		t.Errorf("sqlite config = (%q, %q)", cfg.driver, cfg.sqlitePath)
	}

	WithMemory().apply(cfg)
	if cfg.driver != driverMemory {
		t.Errorf("driver = %q, want memory", cfg.driver)
	}

	WithTemplatesDir("prompts").apply(cfg)
	if cfg.templatesDir != "prompts" {
		t.Errorf("templatesDir = %q", cfg.templatesDir)
	}

	WithHealthTimeout(time.Second).apply(cfg)
	if cfg.healthTimeout != time.Second {
		t.Errorf("healthTimeout = %v", cfg.healthTimeout)
	}

	gen := staticGenerator("x")
	WithGenerator(gen).apply(cfg)
	if cfg.generator != gen {
		t.Error("expected generator to be set")
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	// Close на клиенте с nil store не паникует.
	c := &Client{store: nil}
	c.Close()
}

func TestGeneratorAdapter(t *testing.T) {
	var gotPrompt string
	gen := &mockGenerator{fn: func(_ context.Context, prompt string) (GenerationResult, error) {
		gotPrompt = prompt
		return GenerationResult{Text: "hi", PromptTokens: 5, TotalTokens: 10}, nil
	}}

	adapter := &generatorAdapter{inner: gen}
	res, err := adapter.Generate(context.Background(), "hello", domain.FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPrompt != "hello" {
		t.Errorf("prompt = %q", gotPrompt)
	}
	if res.Text != "hi" || res.TotalTokens != 10 || res.PromptTokens != 5 {
		t.Errorf("result = %+v", res)
	}
}

func TestGeneratorAdapter_Error(t *testing.T) {
	gen := &mockGenerator{fn: func(context.Context, string) (GenerationResult, error) {
		return GenerationResult{}, errors.New("provider down")
	}}
	adapter := &generatorAdapter{inner: gen}
	if _, err := adapter.Generate(context.Background(), "x", domain.FormatJSON); err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestGeneratorAdapter_HealthCheck(t *testing.T) {
	plain := &generatorAdapter{inner: staticGenerator("x")}
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("generator without HealthCheck should be healthy, got %v", err)
	}

	failing := &generatorAdapter{inner: &healthyMockGenerator{healthErr: errors.New("down")}}
	if err := failing.HealthCheck(context.Background()); err == nil {
		t.Error("expected health error to propagate")
	}
}

func TestNoopGenerator(t *testing.T) {
	if _, err := (noopGenerator{}).Generate(context.Background(), "x", domain.FormatJSON); err == nil {
		t.Fatal("expected error from noopGenerator")
	}
	if err := (noopGenerator{}).HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error from noopGenerator")
	}
}

func TestProcess_Memory(t *testing.T) {
	ctx := context.Background()
	gen := staticGenerator("  " + description + "\n")
	c, err := New(ctx, WithGenerator(gen))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	res, err := c.Process(ctx, validSurvey())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.ID == "" {
		t.Error("expected record id")
	}
	if res.OverallAnalysis != "unsure" || res.CatDog != "cats" || res.FurValue != "short" || res.TailValue != "long" {
		t.Errorf("analysis = %+v", res)
	}
	if res.Description != description {
		t.Errorf("description = %q", res.Description)
	}
	if res.Mean != 4.7 || res.Median != 5 {
		t.Errorf("mean/median = %v/%v, want 4.7/5", res.Mean, res.Median)
	}

	rec, err := c.Record(ctx, res.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !rec.HasStatistics {
		t.Error("stored record should carry statistics")
	}
	if rec.UserID != "alice" || len(rec.Answers) != 10 || rec.Answers[0] != (Answer{Question: 1, Value: 7}) {
		t.Errorf("record = %+v", rec)
	}
	if rec.Result != res {
		t.Errorf("record result = %+v, want %+v", rec.Result, res)
	}
}

func TestProcess_SQLite(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, WithSQLite(":memory:"), WithGenerator(staticGenerator(description)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	res, err := c.Process(ctx, validSurvey())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	rec, err := c.Record(ctx, res.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.Mean != res.Mean || rec.StdDev != res.StdDev || rec.Description != description {
		t.Errorf("record = %+v, result = %+v", rec, res)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestProcess_ValidationStage(t *testing.T) {
	ctx := context.Background()
	gen := staticGenerator(description)
	c, err := New(ctx, WithGenerator(gen))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := validSurvey()
	s.Answers = s.Answers[:9]
	_, err = c.Process(ctx, s)

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageValidate {
		t.Fatalf("err = %v, want validate stage error", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("expected ErrValidation")
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on invalid input", gen.calls)
	}
}

func TestProcess_NoGenerator(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Process(ctx, validSurvey())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageDescribe {
		t.Fatalf("err = %v, want describe stage error", err)
	}
	if !errors.Is(err, ErrGeneration) {
		t.Error("expected ErrGeneration")
	}
	if n := c.records.(interface{ Len() int }).Len(); n != 0 {
		t.Errorf("records stored = %d, want 0", n)
	}
}

func TestProcess_UsesSurveyUseCase(t *testing.T) {
	var got domsurvey.Payload
	c := &Client{surveySvc: &mockSurveyUC{
		processFn: func(_ context.Context, p domsurvey.Payload) (surveyuc.Result, error) {
			got = p
			return surveyuc.Result{
				ID:         "r1",
				Processed:  record.Processed{CatDog: "dogs", Description: "d"},
				Statistics: stats.Bundle{Mean: 2, Median: 2, StdDev: 1},
			}, nil
		},
	}}

	res, err := c.Process(context.Background(), Survey{UserID: "bob", Answers: []Answer{{Question: 3, Value: 6}}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got.UserID != "bob" || len(got.SurveyResults) != 1 || got.SurveyResults[0].QuestionNumber != 3 ||
		got.SurveyResults[0].QuestionValue != 6 {
		t.Errorf("payload = %+v", got)
	}
	if res.ID != "r1" || res.CatDog != "dogs" || res.StdDev != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestRecord_NotFound(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Record(context.Background(), "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		wantStatus string
		wantGen    string
	}{
		{"no generator", nil, "degraded", "error"},
		{"generator without health", []Option{WithGenerator(staticGenerator("x"))}, "ok", "ok"},
		{
			"failing generator",
			[]Option{WithGenerator(&healthyMockGenerator{healthErr: errors.New("down")})},
			"degraded", "error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			h := c.Health(context.Background())
			if h.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", h.Status, tt.wantStatus)
			}
			if h.Checks["database"] != "ok" {
				t.Errorf("database = %q, want ok", h.Checks["database"])
			}
			if h.Checks["generation"] != tt.wantGen {
				t.Errorf("generation = %q, want %q", h.Checks["generation"], tt.wantGen)
			}
			if !h.Healthy() {
				t.Error("degraded status should still be healthy")
			}
		})
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("process", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("process", time.Now(), domain.NewStageError(domain.StageInsert, errors.New("fail")))
	obs.observe("record", time.Now(), errors.New("plain"))

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("process", "ok")); got != 1 {
		t.Errorf("process ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("process", "error")); got != 1 {
		t.Errorf("process error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.stageFails.WithLabelValues("insert")); got != 1 {
		t.Errorf("insert stage failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(obs.metrics.stageFails); n != 1 {
		t.Errorf("stage failure series = %d, want 1", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}

	second.observe("ping", time.Now(), nil)
	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("ping", "ok")); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs, err := newObserver(logger, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("process", time.Now(), nil)
	obs.observe("process", time.Now(), domain.NewStageError(domain.StageDescribe, errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "operation completed") {
		t.Errorf("missing debug line: %s", out)
	}
	if !strings.Contains(out, "stage=describe") {
		t.Errorf("missing stage attribute: %s", out)
	}
}
