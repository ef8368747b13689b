// Package vapi is a thin HTTP client for the Vapi telephony API.
package vapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/logger"
	"github.com/j-veylop/vapi-call-browser/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client talks to the Vapi API. The zero value is not usable; construct it
// with New.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a Vapi client. The API key may be empty: its absence is only
// an error once a fetch is attempted, so the browser stays usable offline
// without credentials.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// FetchRecent lists calls created within the trailing lookback window, newest
// first, up to limit. It is the cheap "anything new?" probe: callers pass a
// short window and a limit of one.
func (c *Client) FetchRecent(lookback time.Duration, limit int) ([]models.CallRecord, error) {
	return c.listCalls(time.Now().Add(-lookback), limit)
}

// FetchAll lists calls for a full resynchronization: a generous lookback
// window and a large limit, so each resync re-covers the remote history.
func (c *Client) FetchAll(lookback time.Duration, limit int) ([]models.CallRecord, error) {
	return c.listCalls(time.Now().Add(-lookback), limit)
}

// FetchRaw retrieves the raw JSON for a single call by id.
func (c *Client) FetchRaw(id string) ([]byte, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	url := c.baseURL + "/call/" + id
	req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create call request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read call response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("call request failed (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// listCalls performs the shared list request. createdAtGE and limit travel as
// request headers, which is the exchange the Vapi endpoint actually accepts.
func (c *Client) listCalls(createdAfter time.Time, limit int) ([]models.CallRecord, error) {
	if err := c.requireKey(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(context.Background(), "GET", c.baseURL+"/call", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	c.setAuthHeaders(req)
	// Assigned directly to preserve the exact header casing.
	req.Header["createdAtGE"] = []string{createdAfter.Format(time.RFC3339)}
	req.Header["limit"] = []string{fmt.Sprintf("%d", limit)}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read list response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}

	calls := make([]models.CallRecord, 0, len(raw))
	for _, r := range raw {
		call, err := ParseCall(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse call: %w", err)
		}
		calls = append(calls, call)
	}

	return calls, nil
}

func (c *Client) requireKey() error {
	if c.apiKey == "" {
		return fmt.Errorf("VAPI_API_KEY is not set")
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	// Vapi expects the bare key, no Bearer prefix.
	req.Header.Set("authorization", c.apiKey)
}
