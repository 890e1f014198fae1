package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/myrjola/nai/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// answerPreamble primes the model and is stripped from its output.
	answerPreamble = "According to the available information,"

	maxAnswerTokens = 150
	snippetLength   = 200
)

var (
	initialParams = Params{MaxTokens: maxAnswerTokens, Temperature: 0.7, TopP: 0.9}
	refineParams  = Params{MaxTokens: maxAnswerTokens, Temperature: 0.6, TopP: 0.9}
)

// Answer is the result of one question.
type Answer struct {
	Response        string
	InitialResponse string
	ContextSnippet  string
	TimeTaken       time.Duration
}

// Answerer answers questions about an item using only its lore.
type Answerer struct {
	completer Completer
	truncator *Truncator
	refine    bool
	logger    *slog.Logger
}

// NewAnswerer creates an Answerer. With refine set, the initial answer is rewritten into a complete sentence by a
// second completion.
func NewAnswerer(completer Completer, truncator *Truncator, refine bool, logger *slog.Logger) *Answerer {
	return &Answerer{
		completer: completer,
		truncator: truncator,
		refine:    refine,
		logger:    logger.With("source", "Answerer"),
	}
}

// Answer generates an answer to question from lore. itemType only labels logs and metrics.
func (a *Answerer) Answer(ctx context.Context, itemType, question, lore string) (Answer, error) {
	lore = a.truncator.Truncate(lore)
	start := time.Now()

	initial, err := a.completer.Complete(ctx, initialPrompt(lore, question), initialParams)
	if err != nil {
		answersTotal.With(prometheus.Labels{"item_type": itemType, "status": statusError}).Inc()
		return Answer{}, errors.Wrap(err, "generate initial answer", slog.String("item_type", itemType))
	}
	initialAnswer := Normalize(initial.Text)

	response := initialAnswer
	if a.refine {
		if response, err = a.Refine(ctx, question, initialAnswer); err != nil {
			answersTotal.With(prometheus.Labels{"item_type": itemType, "status": statusError}).Inc()
			return Answer{}, errors.Wrap(err, "generate answer", slog.String("item_type", itemType))
		}
	}

	answer := Answer{
		Response:        response,
		InitialResponse: initialAnswer,
		ContextSnippet:  Snippet(lore),
		TimeTaken:       time.Since(start),
	}
	answersTotal.With(prometheus.Labels{"item_type": itemType, "status": statusSuccess}).Inc()
	a.logger.LogAttrs(ctx, slog.LevelInfo, "answer generated",
		slog.String("item_type", itemType), slog.Duration("time_taken", answer.TimeTaken),
		slog.Bool("refined", a.refine))
	return answer, nil
}

// Refine rewrites initialAnswer into a complete sentence that answers question.
func (a *Answerer) Refine(ctx context.Context, question, initialAnswer string) (string, error) {
	refined, err := a.completer.Complete(ctx, refinePrompt(question, initialAnswer), refineParams)
	if err != nil {
		return "", errors.Wrap(err, "refine answer")
	}
	return withPeriod(strings.TrimSpace(refined.Text)), nil
}

func initialPrompt(lore, question string) string {
	return fmt.Sprintf(`Generate a factual answer to the question using only the context.
Use complete sentences. If information is missing, say "I don't know".

Context: %s

Question: %s
Answer: %s`, lore, question, answerPreamble)
}

func refinePrompt(question, initialAnswer string) string {
	return fmt.Sprintf(`Based on the original question and the initial answer provided below,
please generate a refined, complete sentence that fully explains the answer.
In your answer, make sure to include any relevant context from the question if needed.

Original Question: %s

Initial Answer: %s

Refined, complete sentence answer:`, question, initialAnswer)
}

// Normalize strips the answer preamble and formats the answer as one sentence. Answers starting with "the" keep
// their casing apart from the first letter; other answers are lowercased after the first letter.
func Normalize(answer string) string {
	answer = strings.TrimSpace(strings.ReplaceAll(answer, answerPreamble, ""))
	if answer == "" {
		return "."
	}
	first, size := utf8.DecodeRuneInString(answer)
	rest := answer[size:]
	if !strings.HasPrefix(strings.ToLower(answer), "the ") {
		rest = strings.ToLower(rest)
	}
	return withPeriod(string(unicode.ToUpper(first)) + rest)
}

func withPeriod(s string) string {
	if strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}

// Snippet returns the first 200 characters of text followed by "...".
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) > snippetLength {
		runes = runes[:snippetLength]
	}
	return string(runes) + "..."
}
