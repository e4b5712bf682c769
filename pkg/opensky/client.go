package opensky

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the OpenSky REST API base URL
	DefaultBaseURL = "https://opensky-network.org/api"

	// DefaultTimeout for API requests
	DefaultTimeout = 10 * time.Second

	statesAllPath = "/states/all"

	// maxErrorBody caps how much of a non-OK response body ends up in a StatusError
	maxErrorBody = 512
)

// Client implements Source against the OpenSky REST API.
// Requests are anonymous; no retry or rate limiting is applied.
type Client struct {
	// baseURL is the API base URL (default: https://opensky-network.org/api)
	baseURL string

	// httpClient is the HTTP client used for API requests
	httpClient *http.Client

	logger *slog.Logger
}

// NewClient creates a new OpenSky API client.
// baseURL should be DefaultBaseURL (or a test server URL).
// A nil logger discards log output.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
}

// StatesURL returns the full URL of the "all states" endpoint.
func (c *Client) StatesURL() string {
	return c.baseURL + statesAllPath
}

// FetchSnapshot issues one GET against /states/all and decodes the body.
func (c *Client) FetchSnapshot(ctx context.Context) (*StateSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatesURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state vectors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var snapshot StateSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if snapshot.States == nil {
		snapshot.States = []StateVector{}
	}

	c.logger.Info("state vectors returned by OpenSky",
		slog.Int("count", len(snapshot.States)),
		slog.Int64("time", snapshot.Time))

	return &snapshot, nil
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

// IsStatusError checks if an error is (or wraps) a StatusError.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
