// Package cloudflare is a stateless, credential-parameterized client for
// the Cloudflare v4 DNS API. Every failure mode — transport error, non-2xx
// status, malformed body, or a success:false envelope — surfaces as
// *APIError so callers treat them uniformly as terminal for the operation.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

type Client struct {
	email   string
	apiKey  string
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a client for the given credentials. Credentials are not
// validated here; the first failed call reports them.
func New(email, apiKey string, opts ...Option) *Client {
	c := &Client{
		email:   email,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is Cloudflare's uniform response wrapper. The success flag must
// be checked in addition to the HTTP status.
type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Errors  []ResponseError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("X-Auth-Email", c.email)
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("failed to read response: %v", err), StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &APIError{Message: fmt.Sprintf("invalid JSON response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Message:    fmt.Sprintf("Cloudflare API error: %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Errors:     env.Errors,
		}
	}
	if !env.Success {
		return &APIError{
			Message:    "API returned an error envelope",
			StatusCode: resp.StatusCode,
			Errors:     env.Errors,
		}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return &APIError{Message: fmt.Sprintf("failed to decode result: %v", err), StatusCode: resp.StatusCode}
		}
	}
	return nil
}
