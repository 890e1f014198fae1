package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/query"
)

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "write response",
			errors.SlogError(errors.Wrap(err, "encode json")))
	}
}

// errorJSON responds in the shape query clients understand: a non-empty error field.
func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, query.Response{Error: message})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
	app.errorJSON(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), slog.String("message", message))
	app.errorJSON(w, r, status, message)
}
