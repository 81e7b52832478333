// Package registry is the HTTP client for the backend case-registry service.
// The registry owns case records; this service only creates and lists them.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CaseRecord is the payload sent to the registry when a letter is dispatched.
type CaseRecord struct {
	CaseType   string    `json:"case_type"`
	Filename   string    `json:"filename"`
	Recipients []string  `json:"recipients"`
	SentAt     time.Time `json:"sent_at"`
}

// Case is one registry entry as returned by the backend.
type Case struct {
	ID         string    `json:"id"`
	CaseType   string    `json:"case_type"`
	Filename   string    `json:"filename"`
	Recipients []string  `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}

// Client talks to the case-registry backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a registry client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type createCaseResponse struct {
	ID string `json:"id"`
}

// CreateCase registers a dispatched letter and returns the backend case ID.
func (c *Client) CreateCase(ctx context.Context, record CaseRecord) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode case record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cases", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("case registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("case registry rejected record: status %d: %s", resp.StatusCode, string(snippet))
	}

	var created createCaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode registry response: %w", err)
	}

	c.logger.Info("Case registered",
		zap.String("case_id", created.ID),
		zap.String("case_type", record.CaseType))

	return created.ID, nil
}

// ListCases fetches all registry entries.
func (c *Client) ListCases(ctx context.Context) ([]Case, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cases", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("case registry list failed: status %d: %s", resp.StatusCode, string(snippet))
	}

	var cases []Case
	if err := json.NewDecoder(resp.Body).Decode(&cases); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}
	return cases, nil
}
