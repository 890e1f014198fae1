package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/models"
	"github.com/myrjola/nai/internal/query"
)

const (
	maxRequestBytes = 64 << 10

	msgMissingParameters = "Missing required parameters"
	msgContextNotFound   = "Context not found"
	msgGenerationFailed  = "Failed to generate answer"
	msgRefineFailed      = "Failed to refine answer"
	msgUnknownItemType   = "Unknown item type"
	msgInvalidLimit      = "Invalid limit"
)

// generate answers a question about an item type from the item's lore and records the answer.
func (app *application) generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req query.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, msgMissingParameters)
		return
	}
	question := strings.TrimSpace(req.Question)
	if strings.TrimSpace(req.ItemType) == "" || question == "" {
		app.clientError(w, r, http.StatusBadRequest, msgMissingParameters)
		return
	}

	item, ok := app.lookupItem(req.ItemType)
	if !ok || strings.TrimSpace(item.Lore) == "" {
		app.clientError(w, r, http.StatusNotFound, msgContextNotFound)
		return
	}
	itemType := item.Type.WireName()

	answer, err := app.answerer.Answer(ctx, itemType, question, item.Lore)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "generation failed",
			slog.String("item_type", itemType), errors.SlogError(err))
		app.errorJSON(w, r, http.StatusInternalServerError, msgGenerationFailed)
		return
	}

	if _, err = app.completions.Record(ctx, models.Completion{
		ItemType:      itemType,
		Question:      question,
		Answer:        answer.Response,
		InitialAnswer: answer.InitialResponse,
		TimeTakenMS:   answer.TimeTaken.Milliseconds(),
	}); err != nil {
		// The user still gets the answer.
		app.logger.LogAttrs(ctx, slog.LevelError, "failed to record completion", errors.SlogError(err))
	}

	app.writeJSON(w, r, http.StatusOK, query.Response{
		Response:        answer.Response,
		InitialResponse: answer.InitialResponse,
		ContextSnippet:  answer.ContextSnippet,
		TimeTaken:       answer.TimeTaken.Seconds(),
	})
}

// refine rewrites an earlier answer into a complete sentence without looking at any item.
func (app *application) refine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req query.RefineRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		app.refineError(w, r, http.StatusBadRequest, msgMissingParameters)
		return
	}
	question := strings.TrimSpace(req.Question)
	initialAnswer := strings.TrimSpace(req.InitialAnswer)
	if question == "" || initialAnswer == "" {
		app.refineError(w, r, http.StatusBadRequest, msgMissingParameters)
		return
	}

	refined, err := app.answerer.Refine(ctx, question, initialAnswer)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "refinement failed", errors.SlogError(err))
		app.refineError(w, r, http.StatusInternalServerError, msgRefineFailed)
		return
	}
	app.writeJSON(w, r, http.StatusOK, query.RefineResponse{RefinedResponse: refined})
}

func (app *application) refineError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), slog.String("message", message))
	app.writeJSON(w, r, status, query.RefineResponse{Error: message})
}

func (app *application) lookupItem(wireName string) (catalog.Item, bool) {
	itemType, err := catalog.ParseItemType(wireName)
	if err != nil {
		return catalog.Item{}, false
	}
	item, err := app.catalog.ByType(itemType)
	if err != nil {
		return catalog.Item{}, false
	}
	return item, true
}

type historyEntry struct {
	ItemType      string  `json:"itemType"`
	Order         int64   `json:"order"`
	Question      string  `json:"question"`
	Answer        string  `json:"answer"`
	InitialAnswer string  `json:"initialAnswer"`
	TimeTaken     float64 `json:"timeTaken"`
	Created       string  `json:"created"`
}

type historyResponse struct {
	Completions []historyEntry `json:"completions"`
}

// history lists recorded answers, optionally filtered by ?itemType= and capped by ?limit=.
func (app *application) history(w http.ResponseWriter, r *http.Request) {
	var itemType string
	if raw := r.URL.Query().Get("itemType"); raw != "" {
		t, err := catalog.ParseItemType(raw)
		if err != nil {
			app.clientError(w, r, http.StatusBadRequest, msgUnknownItemType)
			return
		}
		itemType = t.WireName()
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			app.clientError(w, r, http.StatusBadRequest, msgInvalidLimit)
			return
		}
	}

	completions, err := app.completions.List(r.Context(), itemType, limit)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list completions"))
		return
	}
	resp := historyResponse{Completions: make([]historyEntry, 0, len(completions))}
	for _, c := range completions {
		resp.Completions = append(resp.Completions, historyEntry{
			ItemType:      c.ItemType,
			Order:         c.Order,
			Question:      c.Question,
			Answer:        c.Answer,
			InitialAnswer: c.InitialAnswer,
			TimeTaken:     c.TimeTaken().Round(time.Millisecond).Seconds(),
			Created:       c.Created,
		})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
