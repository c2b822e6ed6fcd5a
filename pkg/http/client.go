package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const (
	DefaultTimeout = 30 * time.Second
	UserAgent      = "watchlistarr/0.1.0"

	// maxErrorBody bounds how much of a failed response is kept on a StatusError
	maxErrorBody = 4 << 10
)

// RequestEditorFn mutates a request before it is sent
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// SetQueryParam sets a query parameter on every request it edits
func SetQueryParam(key, value string) RequestEditorFn {
	return func(ctx context.Context, req *http.Request) error {
		q := req.URL.Query()
		q.Set(key, value)
		req.URL.RawQuery = q.Encode()
		return nil
	}
}

// SetHeader sets a header on every request it edits
func SetHeader(key, value string) RequestEditorFn {
	return func(ctx context.Context, req *http.Request) error {
		req.Header.Set(key, value)
		return nil
	}
}

// Client issues JSON requests and classifies failures. It is stateless and safe for concurrent use.
type Client struct {
	doer HTTPClient
}

// NewClient wraps doer
func NewClient(doer HTTPClient) *Client {
	return &Client{doer: doer}
}

// New creates a Client with a request timeout that retries 429 responses up to maxRetries times
func New(timeout time.Duration, maxRetries int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := &http.Client{Timeout: timeout}
	return NewClient(NewRateLimitedHTTPClient(WithHTTPClient(base), WithMaxRetries(maxRetries)))
}

// Get returns the raw body of a successful GET request
func (c *Client) Get(ctx context.Context, url string, editors ...RequestEditorFn) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil, editors)
}

// GetJSON decodes the body of a successful GET request into out
func (c *Client) GetJSON(ctx context.Context, url string, out any, editors ...RequestEditorFn) error {
	editors = append([]RequestEditorFn{SetHeader("Accept", "application/json")}, editors...)
	b, err := c.do(ctx, http.MethodGet, url, nil, editors)
	if err != nil {
		return err
	}

	return decode(url, b, out)
}

// PostJSON encodes body, posts it and decodes the response into out when out is not nil
func (c *Client) PostJSON(ctx context.Context, url string, body any, out any, editors ...RequestEditorFn) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	editors = append([]RequestEditorFn{
		SetHeader("Accept", "application/json"),
		SetHeader("Content-Type", "application/json"),
	}, editors...)

	b, err := c.do(ctx, http.MethodPost, url, payload, editors)
	if err != nil {
		return err
	}

	if out == nil || len(b) == 0 {
		return nil
	}

	return decode(url, b, out)
}

// Delete issues a DELETE request and discards the response body
func (c *Client) Delete(ctx context.Context, url string, editors ...RequestEditorFn) error {
	_, err := c.do(ctx, http.MethodDelete, url, nil, editors)
	return err
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, editors []RequestEditorFn) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	for _, edit := range editors {
		if err := edit(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to edit request: %w", err)
		}
	}

	target := Redact(req.URL.String())

	resp, err := c.doer.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       b,
		}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response from %s: %w", ErrTransport, target, err)
	}

	return b, nil
}

func decode(url string, b []byte, out any) error {
	if err := json.Unmarshal(b, out); err != nil {
		return &DecodeError{URL: Redact(url), Err: err}
	}
	return nil
}
