// Package analysis derives categorical labels from survey answers.
package analysis

import (
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
	"github.com/kailas-cloud/surveyd/internal/domain/survey"
)

// Label values.
const (
	Certain = "certain"
	Unsure  = "unsure"
	Cats    = "cats"
	Dogs    = "dogs"
	Long    = "long"
	Short   = "short"
)

// Analysis holds the derived attributes of one survey.
type Analysis struct {
	OverallAnalysis string
	CatDog          string
	FurValue        string
	TailValue       string
}

// Classify applies the threshold rules to s. Pure: no I/O, no state.
func Classify(s survey.Survey) Analysis {
	return Analysis{
		OverallAnalysis: overall(s),
		CatDog:          catDog(s),
		FurValue:        fur(s),
		TailValue:       tail(s),
	}
}

// overall is unsure when q1 is maxed out but q4 is low.
func overall(s survey.Survey) string {
	if s.Answer(1) == 7 && s.Answer(4) < 3 {
		return Unsure
	}
	return Certain
}

func catDog(s survey.Survey) string {
	if s.Answer(10) > 5 && s.Answer(9) <= 5 {
		return Cats
	}
	return Dogs
}

func fur(s survey.Survey) string {
	if stats.Mean(s.Values()) > 5 {
		return Long
	}
	return Short
}

func tail(s survey.Survey) string {
	if s.Answer(7) > 4 {
		return Long
	}
	return Short
}
