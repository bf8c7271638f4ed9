// Package record defines the persisted form of a processed survey.
package record

import (
	"time"

	"github.com/kailas-cloud/surveyd/internal/domain/analysis"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
	"github.com/kailas-cloud/surveyd/internal/domain/survey"
)

// Processed holds the derived attributes and the generated description.
type Processed struct {
	OverallAnalysis string
	CatDog          string
	FurValue        string
	TailValue       string
	Description     string
}

// NewProcessed combines classifier output with a generated description.
func NewProcessed(a analysis.Analysis, description string) Processed {
	return Processed{
		OverallAnalysis: a.OverallAnalysis,
		CatDog:          a.CatDog,
		FurValue:        a.FurValue,
		TailValue:       a.TailValue,
		Description:     description,
	}
}

// Answer is the stored form of one survey result.
type Answer struct {
	QuestionNumber int
	QuestionValue  int
}

// Draft is the content of the initial insert: survey fields plus processed fields.
type Draft struct {
	UserID    string
	Answers   []Answer
	Processed Processed
}

// NewDraft builds the insert payload for a validated survey.
func NewDraft(s survey.Survey, p Processed) Draft {
	results := s.Results()
	answers := make([]Answer, len(results))
	for i, r := range results {
		answers[i] = Answer{QuestionNumber: r.Number(), QuestionValue: r.Value()}
	}
	return Draft{UserID: s.UserID(), Answers: answers, Processed: p}
}

// Stored is a record as held by the document store.
// Statistics is nil until the update step has run.
type Stored struct {
	ID         string
	UserID     string
	Answers    []Answer
	Processed  Processed
	Statistics *stats.Bundle
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasStatistics reports whether the statistics update has been applied.
func (s *Stored) HasStatistics() bool { return s.Statistics != nil }
