package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusEmpty   = "error_empty_response"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nai_ai_requests_total",
			Help: "Completion requests by model and status.",
		},
		[]string{"model", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nai_ai_request_duration_seconds",
			Help:    "Completion request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	promptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nai_ai_prompt_tokens",
			Help:    "Prompt tokens per completion.",
			Buckets: prometheus.LinearBuckets(100, 100, 10),
		},
		[]string{"model"},
	)
	completionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nai_ai_completion_tokens",
			Help:    "Generated tokens per completion.",
			Buckets: prometheus.LinearBuckets(10, 20, 10),
		},
		[]string{"model"},
	)
	answersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nai_answers_total",
			Help: "Answers produced by item type and status.",
		},
		[]string{"item_type", "status"},
	)
)

func observeRequest(model, status string, d time.Duration) {
	requestsTotal.With(prometheus.Labels{"model": model, "status": status}).Inc()
	requestDuration.With(prometheus.Labels{"model": model}).Observe(d.Seconds())
}
