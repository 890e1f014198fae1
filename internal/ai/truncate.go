package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/nai/internal/errors"
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

type encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Truncator bounds a text to a number of tokens.
type Truncator struct {
	maxTokens int
	enc       encoder
}

// NewTruncator uses the tiktoken encoding of model. When the encoding cannot be loaded, e.g. without network access
// to fetch the BPE ranks, whitespace separated words are counted as tokens instead. maxTokens <= 0 disables
// truncation.
func NewTruncator(ctx context.Context, model string, maxTokens int, logger *slog.Logger) *Truncator {
	t := &Truncator{maxTokens: maxTokens}
	if maxTokens <= 0 {
		return t
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "tiktoken unavailable, counting words",
			slog.String("model", model), errors.SlogError(err))
		return t
	}
	t.enc = enc
	return t
}

// Truncate returns at most maxTokens tokens of text.
func (t *Truncator) Truncate(text string) string {
	if t.maxTokens <= 0 {
		return text
	}
	if t.enc == nil {
		words := strings.Fields(text)
		if len(words) <= t.maxTokens {
			return text
		}
		return strings.Join(words[:t.maxTokens], " ")
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:t.maxTokens])
}
