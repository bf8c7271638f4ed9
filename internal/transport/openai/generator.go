package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/surveyd/internal/domain"
)

const providerName = "openai"

// Generator is a text-generation provider using the OpenAI-compatible chat API.
type Generator struct {
	client *openai.Client
	model  string
	user   string
}

// Config holds the generation provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	User    string
	Timeout time.Duration
}

// NewGenerator creates an OpenAI-compatible text generator.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		user:   cfg.User,
	}
}

// Generate implements domain.TextGenerator with a single user message.
func (g *Generator) Generate(
	ctx context.Context, prompt string, format domain.ResponseFormat,
) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		User: g.user,
	}
	if format == domain.FormatJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, parseAPIError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return domain.GenerationResult{}, &domain.ProviderError{
			Provider: providerName, StatusCode: http.StatusOK, Message: "empty choices",
		}
	}

	return domain.GenerationResult{
		Text:         resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", parseAPIError(ctx, err))
	}
	return nil
}

// parseAPIError converts client errors into *domain.ProviderError so callers
// can tell transient failures from permanent ones. Context errors pass through.
func parseAPIError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("chat completion: %w", ctxErr)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = strings.TrimSpace(string(reqErr.Body))
		}
		return &domain.ProviderError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	return &domain.ProviderError{Provider: providerName, Message: err.Error()}
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
