// Package openai implements the generation.Generator interface using the
// OpenAI chat completions API with a JSON-schema response format.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/pulseprep/pulseprep-api/internal/config"
	"github.com/pulseprep/pulseprep-api/internal/domain"
	"github.com/pulseprep/pulseprep-api/internal/generation"
)

const defaultModel = goopenai.GPT4oMini

// Generator produces assessment items via the OpenAI API.
type Generator struct {
	logger *slog.Logger
	client *goopenai.Client
	model  string
	retry  generation.RetryPolicy
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates an OpenAI-backed item generator.
func NewGenerator(log *slog.Logger, cfg config.GenerationConfig) (*Generator, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
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
		logger: log.With(slog.String("component", "openai_generator")),
		client: goopenai.NewClient(cfg.OpenAIAPIKey),
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

	schema, err := jsonschema.GenerateSchemaForType(generation.ItemPayload{})
	if err != nil {
		return nil, fmt.Errorf("%w: schema generation: %v", generation.ErrInvalidConfig, err)
	}

	req := goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: generation.BuildPrompt(difficulty, topic),
			},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   "assessment_item",
				Schema: schema,
				Strict: true,
			},
		},
	}

	return generation.Retry(ctx, g.retry, func() (*domain.ContentItem, error) {
		g.logger.DebugContext(ctx, "calling OpenAI API",
			"model", g.model,
			"difficulty", difficulty.String())

		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, mapAPIError(err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%w: no choices returned", generation.ErrInvalidResponse)
		}

		choice := resp.Choices[0]
		if choice.FinishReason == goopenai.FinishReasonContentFilter {
			return nil, fmt.Errorf("%w: content filter", generation.ErrContentBlocked)
		}

		return generation.ParseItem([]byte(choice.Message.Content), difficulty, topic)
	})
}

func mapAPIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: rate limited: %v", generation.ErrTransientFailure, err)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: server error: %v", generation.ErrTransientFailure, err)
		}
	}
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}
