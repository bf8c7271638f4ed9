package domain

import "context"

// ResponseFormat selects how the generation backend should shape its output.
type ResponseFormat string

const (
	// FormatText requests free-form text.
	FormatText ResponseFormat = "text"
	// FormatJSON requests a machine-parseable JSON response.
	FormatJSON ResponseFormat = "json"
)

// TextGenerator is the shared text-completion contract between layers.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, format ResponseFormat) (GenerationResult, error)
}

// HealthChecker verifies generation provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GenerationResult carries the generated text and token usage through the decorator chain.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}
