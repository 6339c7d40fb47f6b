package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the admin application's lookup API for identities that
// this service does not own: auditors and audits. Lookups feed two places
// with different failure semantics. Existence checks at issuance are
// authoritative and surface errors; display-name resolution at scan time is
// best-effort and degrades to placeholders.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type AuditorProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type AuditSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) GetAuditor(ctx context.Context, auditorID string) (*AuditorProfile, error) {
	var profile AuditorProfile
	found, err := c.get(ctx, fmt.Sprintf("/api/v1/auditors/%s", auditorID), &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &profile, nil
}

func (c *Client) GetAudit(ctx context.Context, auditID string) (*AuditSummary, error) {
	var summary AuditSummary
	found, err := c.get(ctx, fmt.Sprintf("/api/v1/audits/%s", auditID), &summary)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &summary, nil
}

// AuditExists implements the issuer's reference check for audits.
func (c *Client) AuditExists(ctx context.Context, auditID string) (bool, error) {
	summary, err := c.GetAudit(ctx, auditID)
	if err != nil {
		return false, err
	}
	return summary != nil, nil
}

// AuditorExists implements the issuer's reference check for auditors.
func (c *Client) AuditorExists(ctx context.Context, auditorID string) (bool, error) {
	profile, err := c.GetAuditor(ctx, auditorID)
	if err != nil {
		return false, err
	}
	return profile != nil, nil
}

// get performs an authenticated GET and decodes the response. Returns
// found=false on 404 without error so callers can distinguish "unknown id"
// from a transport fault.
func (c *Client) get(ctx context.Context, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("directory lookup failed", "path", path, "error", err)
		return false, fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("directory lookup returned unexpected status", "path", path, "status", resp.StatusCode)
		return false, fmt.Errorf("directory lookup: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode lookup response: %w", err)
	}
	return true, nil
}
