// Package upstream implements the client for the media server the console
// administers: REST calls for queue, request and migration data, plus a
// WebSocket subscription for live queue pushes.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/helm/internal/activity"
	"github.com/slipstream/helm/internal/config"
	"github.com/slipstream/helm/internal/migration"
)

var (
	ErrUnauthorized = errors.New("upstream rejected the API key")
	ErrUpstream     = errors.New("upstream request failed")
)

// Client is the media server API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewClient creates a new upstream client.
func NewClient(cfg config.UpstreamConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.With().Str("component", "upstream").Logger(),
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WebSocketURL returns the upstream WebSocket endpoint.
func (c *Client) WebSocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid upstream base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String(), nil
}

// do issues a request and decodes the JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %s %s returned %d", ErrUpstream, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// GetQueue fetches the live download queue across all of the server's
// enabled download clients.
func (c *Client) GetQueue(ctx context.Context) ([]activity.QueueItem, error) {
	var items []activity.QueueItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/downloads/queue", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListRequests fetches the outstanding portal requests. Completed and denied
// requests are excluded server-side.
func (c *Client) ListRequests(ctx context.Context) ([]activity.Request, error) {
	var requests []activity.Request
	if err := c.do(ctx, http.MethodGet, "/api/v1/portal/requests?active=true", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// GenerateMigrationPreview asks the server for a fresh dry-run preview of the
// multi-version slot migration.
func (c *Client) GenerateMigrationPreview(ctx context.Context) (*migration.MigrationPreview, error) {
	preview := &migration.MigrationPreview{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/slots/migration/preview", nil, preview); err != nil {
		return nil, err
	}
	return preview, nil
}

// ExecuteMigration commits the migration with the given manual overrides.
func (c *Client) ExecuteMigration(ctx context.Context, input migration.ExecuteMigrationInput) (*migration.MigrationResult, error) {
	result := &migration.MigrationResult{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/slots/migration/execute", input, result); err != nil {
		return nil, err
	}
	c.logger.Info().
		Int("assigned", result.FilesAssigned).
		Int("queued", result.FilesQueued).
		Bool("success", result.Success).
		Msg("migration executed upstream")
	return result, nil
}

// Ping verifies connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}
