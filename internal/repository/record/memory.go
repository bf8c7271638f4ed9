package record

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
)

// MemoryRepo keeps records in process memory. Safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]record.Stored
	now     func() time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]record.Stored), now: time.Now}
}

// Insert stores a record without statistics.
func (r *MemoryRepo) Insert(_ context.Context, d record.Draft) (string, error) {
	now := r.now().UTC()
	id := uuid.NewString()

	r.mu.Lock()
	r.records[id] = record.Stored{
		ID:        id,
		UserID:    d.UserID,
		Answers:   slices.Clone(d.Answers),
		Processed: d.Processed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Unlock()

	return id, nil
}

// UpdateStatistics sets the statistics of an existing record.
func (r *MemoryRepo) UpdateStatistics(_ context.Context, id string, b stats.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.records[id]
	if !ok {
		return notFoundErr(id)
	}
	s.Statistics = &b
	s.UpdatedAt = r.now().UTC()
	r.records[id] = s
	return nil
}

// Find returns a copy of a record by id.
func (r *MemoryRepo) Find(_ context.Context, id string) (record.Stored, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.records[id]
	if !ok {
		return record.Stored{}, notFoundErr(id)
	}
	s.Answers = slices.Clone(s.Answers)
	if s.Statistics != nil {
		b := *s.Statistics
		s.Statistics = &b
	}
	return s, nil
}

// Ping always succeeds; the memory store has no remote side.
func (r *MemoryRepo) Ping(context.Context) error { return nil }

// Len returns the number of stored records.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
