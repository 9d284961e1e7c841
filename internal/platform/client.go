// Package platform is a minimal client for the code-hosting platform's REST
// API. Only what the gate needs is implemented: posting a comment on a pull
// request.
package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
	"github.com/felixgeelhaar/secgate/internal/jsonutil"
)

const (
	// DefaultBaseURL is the public GitHub API.
	DefaultBaseURL = "https://api.github.com"

	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second

	// APIVersion is sent as X-GitHub-Api-Version.
	APIVersion = "2022-11-28"

	maxErrorBody = 64 << 10
)

// Client is the platform API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	UserAgent  string
}

// NewClient creates a new platform API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken sets the authentication token
func (c *Client) SetToken(token string) {
	c.Token = token
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := jsonutil.Marshal(body)
		if err != nil {
			return nil, gerrors.NewPublishRequestError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, gerrors.NewPublishRequestError(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, gerrors.NewPublishRequestError(err)
	}

	return resp, nil
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// parseResponse checks the status and decodes a successful body into
// target. A 2xx body that does not decode leaves target untouched.
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := ""
		var errResp ErrorResponse
		if err := jsonutil.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			detail = errResp.Message
		} else if readErr == nil {
			detail = string(bytes.TrimSpace(body))
		}
		gerr := gerrors.NewPublishStatusError(resp.StatusCode, detail)
		if errResp.DocumentationURL != "" {
			gerr.WithDocs(errResp.DocumentationURL)
		}
		return gerr
	}

	if target != nil && readErr == nil && len(body) > 0 {
		_ = jsonutil.Unmarshal(body, target)
	}

	return nil
}
