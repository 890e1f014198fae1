// Package query sends questions about items to the generation service and turns every request into exactly one
// Outcome.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/nai/internal/broker"
	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/errors"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

var (
	ErrInvalidURL       = errors.NewSentinel("invalid service URL")
	ErrServiceError     = errors.NewSentinel("service reported an error")
	ErrUnexpectedStatus = errors.NewSentinel("unexpected response status")
)

// Handler receives every Outcome produced by Send.
type Handler func(Outcome)

// Client issues generation requests. Send runs each request on its own goroutine and delivers its Outcome to the
// single registered Handler. Outcomes are delivered one at a time, in completion order, which is not necessarily
// submission order.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	seq        atomic.Uint64
	handler    atomic.Pointer[Handler]
	delivery   *broker.Serial[Outcome]
	ctx        context.Context //nolint:containedctx // cancelled by Stop to abandon in-flight requests at shutdown.
	cancel     context.CancelFunc
	inFlight   sync.WaitGroup
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every request. Zero means no timeout beyond the transport's own.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the generation service at baseURL, e.g. http://localhost:5000.
// Call Start in a goroutine before expecting outcomes from Send.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidURL, err.Error(), slog.String("url", baseURL))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Wrap(ErrInvalidURL, "need http(s) scheme and host", slog.String("url", baseURL))
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		endpoint:   u.JoinPath(GeneratePath).String(),
		httpClient: http.DefaultClient,
		logger:     logger.With("source", "QueryClient"),
		ctx:        ctx,
		cancel:     cancel,
	}
	c.delivery = broker.NewSerial(c.deliver)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnOutcome registers the handler for all outcomes, replacing any previous handler.
func (c *Client) OnOutcome(h Handler) {
	c.handler.Store(&h)
}

// Start delivering outcomes. It blocks until Stop is called.
func (c *Client) Start() {
	c.delivery.Start()
}

// Stop abandons in-flight requests and ends delivery. Outcomes completing after Stop are dropped.
func (c *Client) Stop() {
	c.cancel()
	c.delivery.Stop()
}

// Wait blocks until every request sent so far has been handed to the delivery loop or dropped.
func (c *Client) Wait() {
	c.inFlight.Wait()
}

// Send issues the question about an item of itemType without waiting for the answer. It neither cancels nor waits
// for earlier requests. The returned sequence number increases with every call and is copied to the Outcome.
func (c *Client) Send(itemType catalog.ItemType, question string) uint64 {
	seq := c.seq.Add(1)
	req := Request{ItemType: itemType.WireName(), Question: question}

	c.inFlight.Add(1)
	go func() {
		defer c.inFlight.Done()
		outcome := c.Do(c.ctx, req)
		outcome.Seq = seq
		if !c.delivery.Publish(outcome) {
			c.logger.LogAttrs(c.ctx, slog.LevelDebug, "outcome dropped after stop", slog.Uint64("seq", seq))
		}
	}()

	return seq
}

// Do performs the request synchronously. Failures are converted to ApplicationError or TransportError outcomes;
// Do never returns an error.
func (c *Client) Do(ctx context.Context, req Request) Outcome {
	logger := c.logger.With(slog.String("item_type", req.ItemType))
	logger.LogAttrs(ctx, slog.LevelDebug, "sending query", slog.String("question", req.Question))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return transportFailure(errors.Wrap(err, "marshal request"))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return transportFailure(errors.Wrap(err, "create request"))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return transportFailure(errors.Wrap(err, "send request"))
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "close response body", errors.SlogError(err))
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportFailure(errors.Wrap(err, "read response", slog.Int("status", resp.StatusCode)))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "received response",
		slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))

	var decoded Response
	decodeErr := json.Unmarshal(raw, &decoded)
	switch {
	case decodeErr == nil && decoded.Error != "":
		return Outcome{
			Kind: ApplicationError,
			Text: decoded.Error,
			Err: errors.Wrap(ErrServiceError, decoded.Error,
				slog.Int("status", resp.StatusCode)),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return transportFailure(errors.Wrap(ErrUnexpectedStatus, resp.Status, slog.Int("status", resp.StatusCode)))
	case decodeErr != nil:
		return transportFailure(errors.Wrap(decodeErr, "decode response"))
	default:
		return Outcome{Kind: Success, Text: decoded.Response}
	}
}

func transportFailure(err error) Outcome {
	return Outcome{Kind: TransportError, Err: err}
}

// deliver runs on the delivery loop.
func (c *Client) deliver(outcome Outcome) {
	attrs := []slog.Attr{slog.Uint64("seq", outcome.Seq), slog.String("kind", outcome.Kind.String())}
	if outcome.Err != nil {
		attrs = append(attrs, errors.SlogError(outcome.Err))
		c.logger.LogAttrs(c.ctx, slog.LevelError, "query failed", attrs...)
	} else {
		c.logger.LogAttrs(c.ctx, slog.LevelDebug, "query answered", attrs...)
	}

	h := c.handler.Load()
	if h == nil {
		c.logger.LogAttrs(c.ctx, slog.LevelWarn, "no outcome handler registered", attrs...)
		return
	}
	(*h)(outcome)
}
