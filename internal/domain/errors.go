package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed or rule-violating submission.
	ErrValidation = errors.New("validation failed")
	// ErrGeneration signals a failed description generation step.
	ErrGeneration = errors.New("description generation failed")
	// ErrPersistence signals a failed insert or update against the document store.
	ErrPersistence = errors.New("persistence failed")
	// ErrStatistics signals an unusable statistics bundle.
	ErrStatistics = errors.New("statistics calculation failed")

	// ErrTemplateNotFound signals a missing prompt template.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrRecordNotFound signals a missing stored record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrGenerationProvider signals a text-generation backend failure.
	ErrGenerationProvider = errors.New("generation provider error")
)

// Stage names one step of the survey pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageValidate   Stage = "validate"
	StageClassify   Stage = "classify"
	StageDescribe   Stage = "describe"
	StageInsert     Stage = "insert"
	StageStatistics Stage = "statistics"
	StageUpdate     Stage = "update"
)

// StageError reports which pipeline stage failed and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with the stage it came from.
func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// ProviderError is a text-generation backend failure with HTTP context.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrGenerationProvider }

// Retryable reports whether the failure is transient: network errors,
// rate limiting and server-side errors.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
