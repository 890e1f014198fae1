package main

import (
	"net/http"
	"time"
)

const timeoutBody = `{"response":"","error":"Generation timed out"}`

// timeoutHandler responds with 503 Service Unavailable when generation does not finish in time. The body is
// an error response so query clients report it as an application error.
func timeoutHandler(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, timeoutBody)
}
