package surveyd

import (
	"context"

	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

// --- Generator mock ---

type mockGenerator struct {
	fn    func(ctx context.Context, prompt string) (GenerationResult, error)
	calls int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (GenerationResult, error) {
	m.calls++
	return m.fn(ctx, prompt)
}

// healthyMockGenerator also implements HealthChecker.
type healthyMockGenerator struct {
	mockGenerator
	healthErr error
}

func (m *healthyMockGenerator) HealthCheck(context.Context) error { return m.healthErr }

func staticGenerator(text string) *mockGenerator {
	return &mockGenerator{fn: func(context.Context, string) (GenerationResult, error) {
		return GenerationResult{Text: text, PromptTokens: 3, TotalTokens: 9}, nil
	}}
}

// --- surveyUseCase mock ---

type mockSurveyUC struct {
	processFn func(ctx context.Context, p domsurvey.Payload) (surveyuc.Result, error)
}

func (m *mockSurveyUC) Process(ctx context.Context, p domsurvey.Payload) (surveyuc.Result, error) {
	return m.processFn(ctx, p)
}

func validSurvey() Survey {
	values := []int{7, 5, 4, 2, 6, 5, 5, 4, 3, 6}
	answers := make([]Answer, len(values))
	for i, v := range values {
		answers[i] = Answer{Question: i + 1, Value: v}
	}
	return Survey{UserID: "alice", Answers: answers}
}
