// Package gemini implements the generation.Generator interface using
// Google's Gemini API. Responses are constrained to the item JSON schema so
// parsing failures are rare, and transient API faults are retried with
// exponential backoff.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/pulseprep/pulseprep-api/internal/config"
	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/generation"
)

const defaultModel = "gemini-2.0-flash"

// Generator produces assessment items via the Gemini API.
type Generator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
	retry  generation.RetryPolicy
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed item generator.
func NewGenerator(
	ctx context.Context,
	log *slog.Logger,
	cfg config.GenerationConfig,
) (*Generator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	model := cfg.ModelName
	if model == "" {
		model = defaultModel
	}

	retry := generation.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelaySeconds > 0 {
		retry.BaseDelay = time.Duration(cfg.RetryDelaySeconds) * time.Second
	}

	return &Generator{
		logger: log.With(slog.String("component", "gemini_generator")),
		client: client,
		model:  model,
		retry:  retry,
	}, nil
}

// GenerateItem implements generation.Generator.
func (g *Generator) GenerateItem(
	ctx context.Context,
	difficulty domain.Difficulty,
	topic string,
) (*domain.ContentItem, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty %d", generation.ErrInvalidConfig, int(difficulty))
	}

	prompt := generation.BuildPrompt(difficulty, topic)
	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   itemSchema(),
	}

	return generation.Retry(ctx, g.retry, func() (*domain.ContentItem, error) {
		g.logger.DebugContext(ctx, "calling Gemini API",
			"model", g.model,
			"difficulty", difficulty.String())

		result, err := g.client.Models.GenerateContent(
			ctx, g.model, genai.Text(prompt), genCfg)
		if err != nil {
			return nil, mapAPIError(err)
		}
		if len(result.Candidates) > 0 &&
			result.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return nil, fmt.Errorf("%w: safety filter", generation.ErrContentBlocked)
		}

		text := result.Text()
		if text == "" {
			return nil, fmt.Errorf("%w: empty response", generation.ErrInvalidResponse)
		}

		return generation.ParseItem([]byte(text), difficulty, topic)
	})
}

func itemSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"prompt": {Type: genai.TypeString},
			"options": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"correct_option": {Type: genai.TypeString},
			"explanation":    {Type: genai.TypeString},
			"topic":          {Type: genai.TypeString},
		},
		Required: []string{"prompt", "options", "correct_option", "explanation"},
	}
}

func mapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: rate limited: %v", generation.ErrTransientFailure, err)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: server error: %v", generation.ErrTransientFailure, err)
		}
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}
