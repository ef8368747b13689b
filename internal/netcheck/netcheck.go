// Package netcheck classifies the environment as online or offline.
package netcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/logger"
)

// DefaultURL answers HEAD requests cheaply from anywhere.
const DefaultURL = "https://1.1.1.1"

// Probe performs bounded reachability checks against a fixed endpoint. It is
// deliberately separate from the API client: reachability of the internet is
// a different question from reachability of the Vapi service.
type Probe struct {
	transport http.RoundTripper
	url       string
}

// New creates a probe for the given endpoint. An empty url uses DefaultURL.
func New(url string) *Probe {
	if url == "" {
		url = DefaultURL
	}
	return &Probe{url: url}
}

// IsReachable reports whether the endpoint answered within timeout. Any
// response counts, whatever its status; every failure mode collapses to
// false. It never returns an error and never blocks past the timeout.
func (p *Probe) IsReachable(timeout time.Duration) bool {
	req, err := http.NewRequestWithContext(context.Background(), "HEAD", p.url, nil)
	if err != nil {
		logger.Warn("network check failed", "error", err)
		return false
	}

	client := &http.Client{Timeout: timeout, Transport: p.transport}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("network check failed", "error", err)
		return false
	}
	_ = resp.Body.Close()

	logger.Debug("network check successful", "status", resp.StatusCode)
	return true
}
