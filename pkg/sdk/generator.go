package surveyd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/surveyd/internal/domain"
)

// Generator produces the narrative description for a survey.
// The prompt asks for a JSON object; the returned text is stored as is.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// HealthChecker is optionally implemented by a Generator.
// When present, Health reports the generation component through it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GenerationResult carries generated text and token counts.
type GenerationResult struct {
	Text         string
	PromptTokens int
	TotalTokens  int
}

// generatorAdapter wraps public Generator to satisfy internal domain.TextGenerator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(
	ctx context.Context, prompt string, _ domain.ResponseFormat,
) (domain.GenerationResult, error) {
	r, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{
		Text:         r.Text,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *generatorAdapter) HealthCheck(ctx context.Context) error {
	hc, ok := a.inner.(HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("generator health: %w", err)
	}
	return nil
}

// noopGenerator fails every call (used when no generator configured).
type noopGenerator struct{}

func (noopGenerator) Generate(context.Context, string, domain.ResponseFormat) (domain.GenerationResult, error) {
	return domain.GenerationResult{}, errors.New("surveyd: generator not configured (use WithGenerator)")
}

func (noopGenerator) HealthCheck(context.Context) error {
	return errors.New("surveyd: generator not configured")
}
