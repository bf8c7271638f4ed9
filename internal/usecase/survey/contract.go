package survey

import (
	"context"

	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
)

// Repository persists processed survey records.
type Repository interface {
	Insert(ctx context.Context, d record.Draft) (id string, err error)
	UpdateStatistics(ctx context.Context, id string, b stats.Bundle) error
}

// Describer produces a narrative description for a survey mean.
type Describer interface {
	Describe(ctx context.Context, mean float64) (string, error)
}
