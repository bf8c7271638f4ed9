package survey

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/kailas-cloud/surveyd/internal/domain"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	"github.com/kailas-cloud/surveyd/internal/metrics"
	recordrepo "github.com/kailas-cloud/surveyd/internal/repository/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- mocks ---

type mockRepo struct {
	insertErr error
	updateErr error

	inserted []record.Draft
	updates  []stats.Bundle
	updateID string
}

func (m *mockRepo) Insert(_ context.Context, d record.Draft) (string, error) {
	if m.insertErr != nil {
		return "", m.insertErr
	}
	m.inserted = append(m.inserted, d)
	return "rec-1", nil
}

func (m *mockRepo) UpdateStatistics(_ context.Context, id string, b stats.Bundle) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updateID = id
	m.updates = append(m.updates, b)
	return nil
}

type mockDescriber struct {
	text  string
	err   error
	means []float64
}

func (m *mockDescriber) Describe(_ context.Context, mean float64) (string, error) {
	m.means = append(m.means, mean)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func payload(userID string, values ...int) domsurvey.Payload {
	p := domsurvey.Payload{UserID: userID}
	for i, v := range values {
		p.SurveyResults = append(p.SurveyResults, domsurvey.ResultPayload{QuestionNumber: i + 1, QuestionValue: v})
	}
	return p
}

func validPayload() domsurvey.Payload {
	return payload("user_123", 7, 5, 4, 2, 6, 5, 5, 4, 3, 6)
}

func stageOf(t *testing.T, err error) domain.Stage {
	t.Helper()
	var se *domain.StageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *domain.StageError, got %T: %v", err, err)
	}
	return se.Stage
}

// --- tests ---

func TestProcess_Success(t *testing.T) {
	repo := &mockRepo{}
	desc := &mockDescriber{text: "Generated Description"}
	svc := New(repo, desc)

	res, err := svc.Process(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := record.Processed{
		OverallAnalysis: "unsure",
		CatDog:          "cats",
		FurValue:        "short",
		TailValue:       "long",
		Description:     "Generated Description",
	}
	if res.Processed != want {
		t.Errorf("processed = %+v, want %+v", res.Processed, want)
	}
	if res.Statistics.Mean != 4.7 || res.Statistics.Median != 5 {
		t.Errorf("statistics = %+v", res.Statistics)
	}
	if res.ID != "rec-1" {
		t.Errorf("id = %q", res.ID)
	}

	if len(desc.means) != 1 || desc.means[0] != 4.7 {
		t.Errorf("describer means = %v", desc.means)
	}
	if len(repo.inserted) != 1 || len(repo.updates) != 1 {
		t.Fatalf("inserts=%d updates=%d, want 1/1", len(repo.inserted), len(repo.updates))
	}
	if repo.updateID != "rec-1" {
		t.Errorf("update id = %q", repo.updateID)
	}
	if repo.updates[0] != res.Statistics {
		t.Errorf("stored statistics %+v != returned %+v", repo.updates[0], res.Statistics)
	}
	ins := repo.inserted[0]
	if ins.UserID != "user_123" || ins.Processed != want || len(ins.Answers) != 10 {
		t.Errorf("inserted draft = %+v", ins)
	}
}

func TestProcess_ValidationFailure(t *testing.T) {
	repo := &mockRepo{}
	desc := &mockDescriber{text: "x"}
	svc := New(repo, desc)

	_, err := svc.Process(context.Background(), payload("abc", 1, 2, 3))
	if stageOf(t, err) != domain.StageValidate {
		t.Errorf("stage = %v", stageOf(t, err))
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if len(desc.means) != 0 || len(repo.inserted) != 0 {
		t.Error("no later stage may run after validation failure")
	}
}

func TestProcess_GenerationFailureLeavesNoRecord(t *testing.T) {
	repo := &mockRepo{}
	desc := &mockDescriber{err: errors.New("backend down")}
	svc := New(repo, desc)

	before := testutil.ToFloat64(metrics.PipelineFailuresTotal.WithLabelValues("describe"))
	_, err := svc.Process(context.Background(), validPayload())
	if stageOf(t, err) != domain.StageDescribe {
		t.Errorf("stage = %v", stageOf(t, err))
	}
	if len(repo.inserted) != 0 || len(repo.updates) != 0 {
		t.Error("generation failure must not write anything")
	}
	after := testutil.ToFloat64(metrics.PipelineFailuresTotal.WithLabelValues("describe"))
	if after-before != 1 {
		t.Errorf("describe failures delta = %v, want 1", after-before)
	}
}

func TestProcess_InsertFailure(t *testing.T) {
	repo := &mockRepo{insertErr: domain.ErrPersistence}
	svc := New(repo, &mockDescriber{text: "x"})

	_, err := svc.Process(context.Background(), validPayload())
	if stageOf(t, err) != domain.StageInsert {
		t.Errorf("stage = %v", stageOf(t, err))
	}
	if !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
	if len(repo.updates) != 0 {
		t.Error("update must not run after failed insert")
	}
}

func TestProcess_UpdateFailure(t *testing.T) {
	repo := &mockRepo{updateErr: domain.ErrPersistence}
	svc := New(repo, &mockDescriber{text: "x"})

	_, err := svc.Process(context.Background(), validPayload())
	if stageOf(t, err) != domain.StageUpdate {
		t.Errorf("stage = %v", stageOf(t, err))
	}
	if len(repo.inserted) != 1 {
		t.Errorf("insert should have run once, got %d", len(repo.inserted))
	}
}

// failingUpdateStore is a real memory store whose statistics update always fails.
type failingUpdateStore struct {
	*recordrepo.MemoryRepo
	updateID string
}

func (f *failingUpdateStore) UpdateStatistics(_ context.Context, id string, _ stats.Bundle) error {
	f.updateID = id
	return domain.ErrPersistence
}

func TestProcess_UpdateFailureLeavesRecordWithoutStatistics(t *testing.T) {
	mem := recordrepo.NewMemory()
	repo := &failingUpdateStore{MemoryRepo: mem}
	svc := New(repo, &mockDescriber{text: "Short fur, long tail."})

	_, err := svc.Process(context.Background(), validPayload())
	if stageOf(t, err) != domain.StageUpdate {
		t.Fatalf("stage = %v", stageOf(t, err))
	}
	if mem.Len() != 1 {
		t.Fatalf("stored records = %d, want 1", mem.Len())
	}

	stored, err := mem.Find(context.Background(), repo.updateID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if stored.Processed.Description != "Short fur, long tail." {
		t.Errorf("description = %q", stored.Processed.Description)
	}
	if stored.HasStatistics() {
		t.Errorf("record should carry no statistics, got %+v", stored.Statistics)
	}
}

func TestStage_WrapsFailure(t *testing.T) {
	before := testutil.ToFloat64(metrics.PipelineFailuresTotal.WithLabelValues(string(domain.StageClassify)))
	cause := errors.New("classifier unavailable")

	err := stage(zap.NewNop(), domain.StageClassify, func() error { return cause })

	var se *domain.StageError
	if !errors.As(err, &se) || se.Stage != domain.StageClassify {
		t.Fatalf("err = %v, want classify stage error", err)
	}
	if !errors.Is(err, cause) {
		t.Error("stage error must unwrap to the cause")
	}
	after := testutil.ToFloat64(metrics.PipelineFailuresTotal.WithLabelValues(string(domain.StageClassify)))
	if after-before != 1 {
		t.Errorf("classify failures delta = %v, want 1", after-before)
	}
	if err := stage(zap.NewNop(), domain.StageClassify, func() error { return nil }); err != nil {
		t.Errorf("successful stage returned %v", err)
	}
}

func TestProcess_RoundTripWithMemoryStore(t *testing.T) {
	repo := recordrepo.NewMemory()
	svc := New(repo, &mockDescriber{text: "Fluffy and calm."})

	res, err := svc.Process(context.Background(), payload("round_trip", 1, 2, 3, 4, 5, 6, 7, 1, 2, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := repo.Find(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if stored.Processed != res.Processed {
		t.Errorf("stored processed %+v != returned %+v", stored.Processed, res.Processed)
	}
	if !stored.HasStatistics() || *stored.Statistics != res.Statistics {
		t.Errorf("stored statistics %+v != returned %+v", stored.Statistics, res.Statistics)
	}
	wantSD := math.Sqrt(38.4 / 9)
	if math.Abs(res.Statistics.StdDev-wantSD) > 1e-9 {
		t.Errorf("stdDev = %v, want %v", res.Statistics.StdDev, wantSD)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	svc := New(&mockRepo{}, &mockDescriber{text: "same"})

	a, err := svc.Process(context.Background(), validPayload())
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Process(context.Background(), validPayload())
	if err != nil {
		t.Fatal(err)
	}
	if a.Processed != b.Processed || a.Statistics != b.Statistics {
		t.Errorf("runs differ: %+v vs %+v", a, b)
	}
}
