package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/surveyd/internal/domain"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	"github.com/kailas-cloud/surveyd/internal/logger"
	healthuc "github.com/kailas-cloud/surveyd/internal/usecase/health"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

const maxBodyBytes = 1 << 20

// Client-facing messages for pipeline failures.
const (
	msgInvalidPrefix = "Invalid data: "
	msgGeneration    = "Error processing survey data: " // + cause
	msgInsert        = "Database insertion failed."
	msgStatistics    = "Error calculating statistics: " // + cause
	msgUpdate        = "Database update failed."
	msgUnexpected    = "An unexpected error occurred."
)

// SurveyProcessor runs the survey pipeline.
type SurveyProcessor interface {
	Process(ctx context.Context, p domsurvey.Payload) (surveyuc.Result, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a pipeline error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the survey HTTP API.
type Server struct {
	surveys       SurveyProcessor
	health        HealthReporter
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(surveys SurveyProcessor, health HealthReporter) *Server {
	s := &Server{
		surveys: surveys,
		health:  health,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		stageHandler(domain.StageDescribe, msgGeneration+domain.ErrGeneration.Error()),
		stageHandler(domain.StageInsert, msgInsert),
		stageHandler(domain.StageStatistics, msgStatistics+domain.ErrStatistics.Error()),
		stageHandler(domain.StageUpdate, msgUpdate),
	}
	return s
}

// ProcessSurvey handles POST /process-survey.
func (s *Server) ProcessSurvey(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSurveyRequest(r.Body)
	if err != nil {
		logger.FromContext(r.Context()).Warn("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, msgInvalidPrefix+decodeErrorMessage(err))
		return
	}

	res, err := s.surveys.Process(r.Context(), req.toPayload())
	if err != nil {
		s.handlePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, responseFromResult(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) handlePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("unhandled pipeline error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgUnexpected)
}

// validationHandler reports the violated rule to the client.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	msg := err.Error()
	var ve *domsurvey.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Error()
	}
	writeError(w, http.StatusBadRequest, msgInvalidPrefix+msg)
	return true
}

// stageHandler maps a failure in the given stage to a fixed 500 message.
// Causes stay in the logs.
func stageHandler(stage domain.Stage, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		var se *domain.StageError
		if !errors.As(err, &se) || se.Stage != stage {
			return false
		}
		writeError(w, http.StatusInternalServerError, message)
		return true
	}
}

// decodeErrorMessage turns a JSON decode failure into a client-safe rule description.
func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return fmt.Sprintf("%s: expected %s, got %s", field, jsonKind(typeErr.Type), typeErr.Value)
	}
	if errors.Is(err, errTrailingData) {
		return "malformed JSON: trailing data"
	}
	var keyErr *keyCaseError
	if errors.As(err, &keyErr) {
		return keyErr.Error()
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	}
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return "malformed JSON: unexpected end of input"
	}
	return "malformed request body"
}
