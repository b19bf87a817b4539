package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClientOption configures Client.
type ClientOption func(*Client)

// Client calls APIs that answer with the APIResponse envelope.
type Client struct {
	baseURL string
	timeout time.Duration
	headers map[string]string
	client  *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 30 * time.Second,
		headers: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// Do sends body as JSON to path and decodes the envelope's data into dest.
// A non-2xx answer is returned as *AppError carrying the first error of the
// envelope and the HTTP status.
func (c *Client) Do(ctx context.Context, method, path string, body, dest interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var env rawResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return NewAppError(CodeUnexpected, "", fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, raw), resp.StatusCode)
		}
		return fmt.Errorf("decode envelope: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelopeError(resp.StatusCode, env)
	}

	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func envelopeError(status int, env rawResponse) *AppError {
	var errs []*AppError
	if err := json.Unmarshal(env.Data, &errs); err == nil && len(errs) > 0 && errs[0] != nil && errs[0].Code != "" {
		e := errs[0]
		e.Status = status
		return e
	}
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	var detail string
	if err := json.Unmarshal(env.Data, &detail); err == nil && detail != "" {
		msg = detail
	}
	return NewAppError(CodeUnexpected, "", msg, status)
}
