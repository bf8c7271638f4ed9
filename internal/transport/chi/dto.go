package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"

	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

type surveyRequest struct {
	UserID        string             `json:"userId"`
	SurveyResults []surveyResultItem `json:"surveyResults"`
}

type surveyResultItem struct {
	QuestionNumber int `json:"questionNumber"`
	QuestionValue  int `json:"questionValue"`
}

// surveyResponse is the flat processed+statistics object returned on success.
type surveyResponse struct {
	OverallAnalysis string  `json:"overallAnalysis"`
	CatDog          string  `json:"catDog"`
	FurValue        string  `json:"furValue"`
	TailValue       string  `json:"tailValue"`
	Description     string  `json:"description"`
	Mean            float64 `json:"mean"`
	Median          float64 `json:"median"`
	StdDev          float64 `json:"stdDev"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errTrailingData reports bytes after the first JSON value of a request body.
var errTrailingData = errors.New("trailing data after JSON value")

// keyCaseError reports a key that matches a known field only case-insensitively.
type keyCaseError struct {
	Field string
	Want  string
}

func (e *keyCaseError) Error() string {
	return fmt.Sprintf("%s: unknown field, expected %q", e.Field, e.Want)
}

// decodeSurveyRequest reads exactly one JSON object with exact-case keys.
func decodeSurveyRequest(body io.Reader) (surveyRequest, error) {
	var req surveyRequest
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&req); err != nil {
		return req, err //nolint:wrapcheck // classified by decodeErrorMessage
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errTrailingData
	}
	if err := checkKeyCase(data); err != nil {
		return req, err
	}
	return req, nil
}

// checkKeyCase rejects keys that encoding/json would fold onto a field name.
func checkKeyCase(data []byte) error {
	var top map[string]json.RawMessage
	if json.Unmarshal(data, &top) != nil {
		return nil
	}
	if err := matchKeys("", top, "userId", "surveyResults"); err != nil {
		return err
	}

	var items []map[string]json.RawMessage
	if raw, ok := top["surveyResults"]; !ok || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	for i, it := range items {
		if err := matchKeys(fmt.Sprintf("surveyResults[%d].", i), it, "questionNumber", "questionValue"); err != nil {
			return err
		}
	}
	return nil
}

func matchKeys(prefix string, obj map[string]json.RawMessage, known ...string) error {
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		for _, want := range known {
			if k != want && strings.EqualFold(k, want) {
				return &keyCaseError{Field: prefix + k, Want: want}
			}
		}
	}
	return nil
}

// jsonKind names the JSON type a Go destination type expects.
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "value"
	}
}

func (r surveyRequest) toPayload() domsurvey.Payload {
	p := domsurvey.Payload{UserID: r.UserID}
	if r.SurveyResults != nil {
		p.SurveyResults = make([]domsurvey.ResultPayload, len(r.SurveyResults))
		for i, it := range r.SurveyResults {
			p.SurveyResults[i] = domsurvey.ResultPayload{
				QuestionNumber: it.QuestionNumber,
				QuestionValue:  it.QuestionValue,
			}
		}
	}
	return p
}

func responseFromResult(res surveyuc.Result) surveyResponse {
	return surveyResponse{
		OverallAnalysis: res.Processed.OverallAnalysis,
		CatDog:          res.Processed.CatDog,
		FurValue:        res.Processed.FurValue,
		TailValue:       res.Processed.TailValue,
		Description:     res.Processed.Description,
		Mean:            res.Statistics.Mean,
		Median:          res.Statistics.Median,
		StdDev:          res.Statistics.StdDev,
	}
}
