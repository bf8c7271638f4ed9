package record

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
)

// mockCollection implements the collection consumer interface for tests.
type mockCollection struct {
	insertOneFn func(ctx context.Context, doc interface{}) (*mongo.InsertOneResult, error)
	updateOneFn func(ctx context.Context, filter, update interface{}) (*mongo.UpdateResult, error)
	findOneFn   func(ctx context.Context, filter interface{}) *mongo.SingleResult
}

func (m *mockCollection) InsertOne(
	ctx context.Context, doc interface{}, _ ...*options.InsertOneOptions,
) (*mongo.InsertOneResult, error) {
	return m.insertOneFn(ctx, doc)
}

func (m *mockCollection) UpdateOne(
	ctx context.Context, filter, update interface{}, _ ...*options.UpdateOptions,
) (*mongo.UpdateResult, error) {
	return m.updateOneFn(ctx, filter, update)
}

func (m *mockCollection) FindOne(
	ctx context.Context, filter interface{}, _ ...*options.FindOneOptions,
) *mongo.SingleResult {
	return m.findOneFn(ctx, filter)
}

// repository is what every implementation in this package satisfies.
type repository interface {
	Insert(ctx context.Context, d record.Draft) (string, error)
	UpdateStatistics(ctx context.Context, id string, b stats.Bundle) error
	Find(ctx context.Context, id string) (record.Stored, error)
}

func sampleDraft() record.Draft {
	answers := make([]record.Answer, 10)
	for i := range answers {
		answers[i] = record.Answer{QuestionNumber: i + 1, QuestionValue: (i % 7) + 1}
	}
	return record.Draft{
		UserID:  "alice_01",
		Answers: answers,
		Processed: record.Processed{
			OverallAnalysis: "certain",
			CatDog:          "dogs",
			FurValue:        "short",
			TailValue:       "long",
			Description:     "A steady companion.",
		},
	}
}

// exerciseRoundTrip runs the insert → update → find sequence against a repository.
func exerciseRoundTrip(t *testing.T, repo repository) {
	t.Helper()
	ctx := context.Background()
	draft := sampleDraft()

	id, err := repo.Insert(ctx, draft)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("Insert returned empty id")
	}

	got, err := repo.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find after insert: %v", err)
	}
	if got.HasStatistics() {
		t.Error("record has statistics before update")
	}
	if got.ID != id || got.UserID != draft.UserID || got.Processed != draft.Processed {
		t.Errorf("Find after insert = %+v", got)
	}
	if len(got.Answers) != len(draft.Answers) {
		t.Fatalf("answers len = %d, want %d", len(got.Answers), len(draft.Answers))
	}
	for i := range draft.Answers {
		if got.Answers[i] != draft.Answers[i] {
			t.Errorf("answer[%d] = %+v, want %+v", i, got.Answers[i], draft.Answers[i])
		}
	}

	bundle := stats.Bundle{Mean: 3.7, Median: 3.5, StdDev: 1.9}
	if err := repo.UpdateStatistics(ctx, id, bundle); err != nil {
		t.Fatalf("UpdateStatistics: %v", err)
	}

	got, err = repo.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find after update: %v", err)
	}
	if !got.HasStatistics() || *got.Statistics != bundle {
		t.Errorf("statistics = %+v, want %+v", got.Statistics, bundle)
	}
	if got.Processed != draft.Processed {
		t.Errorf("update changed processed fields: %+v", got.Processed)
	}
}
