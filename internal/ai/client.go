// Package ai generates answers about items from their lore using a chat completion backend.
package ai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/nai/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrGenerationFailed = errors.NewSentinel("generation failed")
	ErrEmptyCompletion  = errors.NewSentinel("empty completion")
	ErrUnknownProvider  = errors.NewSentinel("unknown provider")
)

// Params tune a single completion.
type Params struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// Completion is the generated text and the token usage reported by the backend.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string, params Params) (Completion, error)
	Model() string
}

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ProviderConfig selects and configures a Completer.
type ProviderConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewCompleter creates the Completer named by cfg.Provider.
func NewCompleter(cfg ProviderConfig, logger *slog.Logger) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, logger), nil
	case ProviderOllama:
		return NewOllamaClient(cfg, logger)
	default:
		return nil, errors.Wrap(ErrUnknownProvider, "new completer", slog.String("provider", cfg.Provider))
	}
}

type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIClient talks to the OpenAI API, or any compatible API at cfg.BaseURL.
func NewOpenAIClient(cfg ProviderConfig, logger *slog.Logger) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: logger.With("source", "OpenAIClient"),
	}
}

func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, params Params) (Completion, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:       c.model,
			MaxTokens:   params.MaxTokens,
			Temperature: params.Temperature,
			TopP:        params.TopP,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		},
	)
	duration := time.Since(start)
	if err != nil {
		observeRequest(c.model, statusError, duration)
		return Completion{}, errors.Wrap(errors.Join(ErrGenerationFailed, err), "create chat completion",
			slog.String("model", c.model))
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		observeRequest(c.model, statusEmpty, duration)
		return Completion{}, errors.Wrap(ErrEmptyCompletion, "create chat completion", slog.String("model", c.model))
	}

	completion := Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	observeRequest(c.model, statusSuccess, duration)
	observeTokens(c.model, completion)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "chat completion created",
		slog.Duration("duration", duration), slog.Int("prompt_tokens", completion.PromptTokens),
		slog.Int("completion_tokens", completion.CompletionTokens))
	return completion, nil
}

func observeTokens(model string, c Completion) {
	if c.PromptTokens > 0 {
		promptTokens.With(prometheus.Labels{"model": model}).Observe(float64(c.PromptTokens))
	}
	if c.CompletionTokens > 0 {
		completionTokens.With(prometheus.Labels{"model": model}).Observe(float64(c.CompletionTokens))
	}
}
