package ai

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/myrjola/nai/internal/errors"
	"github.com/ollama/ollama/api"
)

const defaultOllamaURL = "http://localhost:11434"

type OllamaClient struct {
	client *api.Client
	model  string
	logger *slog.Logger
}

// NewOllamaClient talks to a local Ollama server. The native API lives at the root, so a trailing /v1 on
// cfg.BaseURL is removed.
func NewOllamaClient(cfg ProviderConfig, logger *slog.Logger) (*OllamaClient, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/v1")
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(err, "parse ollama url", slog.String("url", base))
	}
	return &OllamaClient{
		client: api.NewClient(u, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
		logger: logger.With("source", "OllamaClient"),
	}, nil
}

func (c *OllamaClient) Model() string {
	return c.model
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string, params Params) (Completion, error) {
	stream := false
	req := &api.ChatRequest{ //nolint:exhaustruct // this is better for readability
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]any{
			"temperature": params.Temperature,
			"top_p":       params.TopP,
			"num_predict": params.MaxTokens,
		},
	}

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)
	if err != nil {
		observeRequest(c.model, statusError, duration)
		return Completion{}, errors.Wrap(errors.Join(ErrGenerationFailed, err), "ollama chat",
			slog.String("model", c.model))
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		observeRequest(c.model, statusEmpty, duration)
		return Completion{}, errors.Wrap(ErrEmptyCompletion, "ollama chat", slog.String("model", c.model))
	}

	completion := Completion{
		Text:             resp.Message.Content,
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
	}
	observeRequest(c.model, statusSuccess, duration)
	observeTokens(c.model, completion)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "ollama chat done",
		slog.Duration("duration", duration), slog.Int("prompt_tokens", completion.PromptTokens),
		slog.Int("completion_tokens", completion.CompletionTokens))
	return completion, nil
}
