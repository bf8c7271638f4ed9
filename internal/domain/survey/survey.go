package survey

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/kailas-cloud/surveyd/internal/domain"
)

// Questionnaire shape.
const (
	QuestionCount   = 10
	MinQuestion     = 1
	MaxQuestion     = 10
	MinValue        = 1
	MaxValue        = 7
	MinUserIDLength = 5
)

// userIDRegex matches Unicode word characters: letters, marks, decimal digits
// and connector punctuation such as the underscore.
var userIDRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{Nd}\p{Pc}]+$`)

// Payload is an unvalidated submission as delivered by the transport layer.
type Payload struct {
	UserID        string
	SurveyResults []ResultPayload
}

// ResultPayload is one unvalidated answer.
type ResultPayload struct {
	QuestionNumber int
	QuestionValue  int
}

// Result is one validated answer.
type Result struct {
	number int
	value  int
}

// Number returns the question number (1-10).
func (r Result) Number() int { return r.number }

// Value returns the answer value (1-7).
func (r Result) Value() int { return r.value }

// Survey is a validated submission (immutable value object).
type Survey struct {
	userID  string
	results []Result
	byNum   [MaxQuestion + 1]int
}

// ValidationError names the first rule a payload violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Parse validates p and builds a Survey.
// userId: required, at least 5 characters, word characters only.
// surveyResults: exactly 10 entries, numbers 1-10 each exactly once, values 1-7.
func Parse(p Payload) (Survey, error) {
	if p.UserID == "" {
		return Survey{}, invalid("userId", "is required")
	}
	if utf8.RuneCountInString(p.UserID) < MinUserIDLength {
		return Survey{}, invalid("userId", "must be at least %d characters", MinUserIDLength)
	}
	if !userIDRegex.MatchString(p.UserID) {
		return Survey{}, invalid("userId", "must contain only letters, digits and underscores (word characters)")
	}

	if len(p.SurveyResults) != QuestionCount {
		return Survey{}, invalid("surveyResults",
			"must contain exactly %d items, got %d", QuestionCount, len(p.SurveyResults))
	}

	s := Survey{userID: p.UserID, results: make([]Result, 0, QuestionCount)}
	for i, r := range p.SurveyResults {
		if r.QuestionNumber < MinQuestion || r.QuestionNumber > MaxQuestion {
			return Survey{}, invalid(fmt.Sprintf("surveyResults[%d].questionNumber", i),
				"must be between %d and %d, got %d", MinQuestion, MaxQuestion, r.QuestionNumber)
		}
		if r.QuestionValue < MinValue || r.QuestionValue > MaxValue {
			return Survey{}, invalid(fmt.Sprintf("surveyResults[%d].questionValue", i),
				"must be between %d and %d, got %d", MinValue, MaxValue, r.QuestionValue)
		}
		if s.byNum[r.QuestionNumber] != 0 {
			return Survey{}, invalid("surveyResults",
				"each questionNumber from %d to %d must appear exactly once (duplicate %d)",
				MinQuestion, MaxQuestion, r.QuestionNumber)
		}
		s.byNum[r.QuestionNumber] = r.QuestionValue
		s.results = append(s.results, Result{number: r.QuestionNumber, value: r.QuestionValue})
	}

	return s, nil
}

// UserID returns the submitting user identifier.
func (s Survey) UserID() string { return s.userID }

// Results returns a copy of the answers in submission order.
func (s Survey) Results() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Answer returns the value given for question n, or 0 if n is out of range.
func (s Survey) Answer(n int) int {
	if n < MinQuestion || n > MaxQuestion {
		return 0
	}
	return s.byNum[n]
}

// Values returns the answer values in submission order.
func (s Survey) Values() []int {
	out := make([]int, len(s.results))
	for i, r := range s.results {
		out[i] = r.value
	}
	return out
}
