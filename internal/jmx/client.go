// Package jmx fetches JVM management bean snapshots over HTTP. Hadoop
// daemons expose them as a JSON document with a top-level "beans" array.
package jmx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hadoop-jmx-exporter/pkg/logger"
)

// Bean is one named group of metric fields from the beans array.
type Bean map[string]interface{}

// Name returns the bean's "name" field, or "" when absent.
func (b Bean) Name() string {
	s, _ := b["name"].(string)
	return s
}

// DefaultTimeout bounds a single JMX fetch.
const DefaultTimeout = 5 * time.Second

// Client fetches bean snapshots from JMX HTTP endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch GETs the given JMX URL and returns its beans. Network errors,
// non-success statuses and bodies without a beans array all yield an empty
// slice together with the error; a scrape cycle treats that as "no metrics
// available" rather than failing.
func (c *Client) Fetch(ctx context.Context, url string) ([]Bean, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build jmx request for %s: %w", url, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jmx %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch jmx %s: unexpected status %d", url, resp.StatusCode)
	}

	var doc struct {
		Beans []Bean `json:"beans"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jmx response from %s: %w", url, err)
	}
	if len(doc.Beans) == 0 {
		logger.Debug("no beans in jmx response", zap.String("url", url))
	}
	return doc.Beans, nil
}
