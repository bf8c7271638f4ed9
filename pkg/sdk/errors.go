package surveyd

import "github.com/kailas-cloud/surveyd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation         = domain.ErrValidation
	ErrGeneration         = domain.ErrGeneration
	ErrPersistence        = domain.ErrPersistence
	ErrStatistics         = domain.ErrStatistics
	ErrRecordNotFound     = domain.ErrRecordNotFound
	ErrTemplateNotFound   = domain.ErrTemplateNotFound
	ErrGenerationProvider = domain.ErrGenerationProvider
)

// StageError reports the pipeline stage a Process call failed in.
type StageError = domain.StageError

// Stage names one step of the survey pipeline.
type Stage = domain.Stage

// Pipeline stages in execution order.
const (
	StageValidate   = domain.StageValidate
	StageClassify   = domain.StageClassify
	StageDescribe   = domain.StageDescribe
	StageInsert     = domain.StageInsert
	StageStatistics = domain.StageStatistics
	StageUpdate     = domain.StageUpdate
)
