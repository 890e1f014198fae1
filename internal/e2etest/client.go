package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/nai/internal/errors"
)

// Client talks JSON to a running generation service.
type Client struct {
	client *http.Client
	url    string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{},
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		resp *http.Response
	)
	for {
		if resp, err = c.Get(ctx, urlPath); err == nil {
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.url+urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetJSON fetches a URL and decodes the JSON body into v. Any status other than 200 is an error.
func (c *Client) GetJSON(ctx context.Context, urlPath string, v any) error {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return errors.Wrap(err, "client get")
	}
	return decode(resp, v)
}

// PostJSON sends body as JSON and decodes the response into v. It returns the status code so that callers can
// inspect error responses too.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body, v any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, errors.Wrap(err, "marshal body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+urlPath, bytes.NewReader(payload))
	if err != nil {
		return 0, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, errors.Wrap(err, "decode response", slog.Int("status", resp.StatusCode))
	}
	return resp.StatusCode, nil
}

func decode(resp *http.Response, v any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10)) //nolint:mnd // enough for an error message
		return errors.New("unexpected status code",
			slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
