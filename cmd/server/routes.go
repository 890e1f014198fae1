package main

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/myrjola/nai/internal/query"
)

func (app *application) routes(generateTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST "+query.GeneratePath, timeoutHandler(http.HandlerFunc(app.generate), generateTimeout))
	mux.Handle("POST "+query.RefinePath, timeoutHandler(http.HandlerFunc(app.refine), generateTimeout))
	mux.HandleFunc("GET /history", app.history)
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", app.metrics)

	return alice.New(app.recoverPanic, app.logRequest, secureHeaders, allowCrossOrigin).Then(mux)
}
