package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/kailas-cloud/surveyd/internal/domain"
)

const providerName = "gemini"

// Config holds the Gemini API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Generator is a text-generation provider backed by the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Gemini generator. The client does not dial until the first request.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Generator{client: client, model: cfg.Model}, nil
}

// Generate implements domain.TextGenerator. FormatJSON sets the response MIME type.
func (g *Generator) Generate(
	ctx context.Context, prompt string, format domain.ResponseFormat,
) (domain.GenerationResult, error) {
	var gc *genai.GenerateContentConfig
	if format == domain.FormatJSON {
		gc = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return domain.GenerationResult{}, parseAPIError(ctx, err)
	}

	text := resp.Text()
	if text == "" {
		return domain.GenerationResult{}, &domain.ProviderError{
			Provider: providerName, StatusCode: http.StatusOK, Message: "response has no text candidates",
		}
	}

	res := domain.GenerationResult{Text: text}
	if u := resp.UsageMetadata; u != nil {
		res.PromptTokens = int(u.PromptTokenCount)
		res.TotalTokens = int(u.TotalTokenCount)
	}
	return res, nil
}

// HealthCheck fetches the configured model's metadata.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", g.model, parseAPIError(ctx, err))
	}
	return nil
}

// parseAPIError maps genai.APIError (returned by value) to *domain.ProviderError.
func parseAPIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("generate content: %w", ctxErr)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Provider: providerName, StatusCode: apiErr.Code, Message: apiErr.Message}
	}

	return &domain.ProviderError{Provider: providerName, Message: err.Error()}
}
