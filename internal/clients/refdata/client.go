// Package refdata provides a client for the market reference-data service.
// The pipeline makes one batched request per run: a list of instrument
// identifiers and a list of field names, answered with a per-identifier
// field map. Identifiers unknown to the service come back omitted or with
// null fields, never as an error.
package refdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Fields maps a field name to its value: string, float64 or nil.
type Fields map[string]any

// Field names used by the enrichment step.
const (
	FieldExpectedReportDate = "EXPECTED_REPORT_DT"
	FieldExpectedReportTime = "EXPECTED_REPORT_TIME"
)

// batchRequest is the wire format of a reference-data request.
type batchRequest struct {
	Securities []string `json:"securities"`
	Fields     []string `json:"fields"`
}

// batchResponse is the wire format of a reference-data response.
type batchResponse struct {
	Data  map[string]Fields `json:"data"`
	Error string            `json:"error,omitempty"`
}

// Client is the reference-data service client.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxAttempts int
	cache       *Cache // optional - nil disables caching
	cacheTTL    time.Duration
	log         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache enables the persistent response cache.
func WithCache(cache *Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithMaxAttempts sets how many times the batch request is retried before
// the run is declared failed. The batch stays all-or-nothing: a retry
// re-sends the whole request.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithHTTPClient replaces the default HTTP client, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new reference-data client.
func NewClient(baseURL, apiKey string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxAttempts: 3,
		log:         log.With().Str("component", "refdata").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchBatch retrieves the requested fields for all securities in a single
// batched call. Securities with a fresh cache entry are served from the
// cache; the remainder go out in one request. Failure of that request fails
// the whole fetch.
func (c *Client) FetchBatch(ctx context.Context, securities, fields []string) (map[string]Fields, error) {
	results := make(map[string]Fields, len(securities))

	misses := make([]string, 0, len(securities))
	for _, sec := range securities {
		if sec == "" {
			continue
		}
		if c.cache != nil {
			if f, ok := c.cache.Get(sec); ok {
				results[sec] = f
				continue
			}
		}
		misses = append(misses, sec)
	}

	if len(misses) == 0 {
		c.log.Debug().Int("securities", len(results)).Msg("Reference data served entirely from cache")
		return results, nil
	}

	fetched, err := c.doBatch(ctx, misses, fields)
	if err != nil {
		return nil, err
	}

	for sec, f := range fetched {
		results[sec] = f
		if c.cache != nil {
			if err := c.cache.Store(sec, f, c.cacheTTL); err != nil {
				c.log.Warn().Err(err).Str("security", sec).Msg("Failed to cache reference data")
			}
		}
	}

	c.log.Info().
		Int("requested", len(securities)).
		Int("fetched", len(fetched)).
		Int("cached", len(results)-len(fetched)).
		Msg("Reference data fetch complete")

	return results, nil
}

// doBatch sends the batch request with bounded retry.
func (c *Client) doBatch(ctx context.Context, securities, fields []string) (map[string]Fields, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * 2 * time.Second
			c.log.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying reference data batch")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := c.doRequest(ctx, securities, fields)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("reference data batch failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doRequest(ctx context.Context, securities, fields []string) (map[string]Fields, error) {
	body, err := json.Marshal(batchRequest{Securities: securities, Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/reference", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed batchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("service error: %s", parsed.Error)
	}

	return parsed.Data, nil
}

// String returns the string value of a field, or "" when missing or not a
// string-representable value.
func (f Fields) String(name string) string {
	switch v := f[name].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}
