// Package vanna is a thin facade over the external natural-language-to-SQL
// service. It forwards queries and relays responses; failures are reported,
// never retried.
package vanna

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the Vanna chat endpoint. The HTTP client carries an explicit
// timeout: the upstream call is the one operation in this system with real
// external latency exposure.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New constructs a Client for the given base URL. apiKey may be empty, in
// which case no Authorization header is sent.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Response is the relayed upstream result. Body holds the raw JSON payload
// when the upstream answered with a success status.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Ask forwards the query to the upstream chat endpoint and returns its JSON
// body. A non-2xx upstream status is returned as a Response with a nil Body
// and no error; transport failures return an error.
func (c *Client) Ask(ctx context.Context, query string) (*Response, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Response{StatusCode: resp.StatusCode}, nil
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
