package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/surveyd/internal/domain"
)

// Template keys.
const (
	TemplateHighMean = "the_value_of_short_hair"
	TemplateLowMean  = "the_value_of_long_hair"
	SystemPromptKey  = "system_prompt"
)

// HighMeanThreshold separates the two narrative templates (mean > threshold → high).
const HighMeanThreshold = 4.0

// Service produces a narrative description for a survey from its mean answer value.
type Service struct {
	templates TemplateSource
	generator domain.TextGenerator
}

// New creates a description service.
func New(templates TemplateSource, generator domain.TextGenerator) *Service {
	return &Service{templates: templates, generator: generator}
}

// TemplateFor returns the template key for the given mean.
func TemplateFor(mean float64) string {
	if mean > HighMeanThreshold {
		return TemplateHighMean
	}
	return TemplateLowMean
}

// Describe builds the prompt for mean and returns the trimmed backend response.
// Every failure wraps domain.ErrGeneration.
func (s *Service) Describe(ctx context.Context, mean float64) (string, error) {
	key := TemplateFor(mean)

	content, err := s.templates.Template(ctx, key)
	if err != nil {
		return "", generationErr(fmt.Errorf("load template %s: %w", key, err))
	}
	system, err := s.templates.Template(ctx, SystemPromptKey)
	if err != nil {
		return "", generationErr(fmt.Errorf("load template %s: %w", SystemPromptKey, err))
	}

	res, err := s.generator.Generate(ctx, BuildPrompt(system, content), domain.FormatJSON)
	if err != nil {
		return "", generationErr(fmt.Errorf("generate: %w", err))
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", generationErr(errors.New("empty response from generation backend"))
	}
	return text, nil
}

// BuildPrompt joins the system instruction and template content with a blank line.
func BuildPrompt(system, content string) string {
	return system + "\n\n" + content
}

func generationErr(err error) error {
	if errors.Is(err, domain.ErrGeneration) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrGeneration, err)
}
