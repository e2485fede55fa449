// Package client provides an HTTP client for the floorlink action API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ActionMetadata describes the actions available for a listed item.
type ActionMetadata struct {
	Icon        string        `json:"icon"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Label       string        `json:"label"`
	Links       *ActionLinks  `json:"links,omitempty"`
	Disabled    bool          `json:"disabled,omitempty"`
}

// ActionLinks holds the concrete operations a client can invoke.
type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// LinkedAction is one invokable operation, optionally parameterized.
type LinkedAction struct {
	Label      string            `json:"label"`
	Href       string            `json:"href"`
	Parameters []ActionParameter `json:"parameters,omitempty"`
}

// ActionParameter describes a client-supplied input such as a bid amount.
type ActionParameter struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// ActionResult is the unsigned transaction returned by a POST action.
// Transaction is base64 wire format; sign and broadcast it promptly, it is
// only valid while its blockhash is.
type ActionResult struct {
	Transaction string `json:"transaction"`
	Message     string `json:"message,omitempty"`
}

// Client is the HTTP client for the floorlink action service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new action service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetAction fetches the action metadata for a mint.
func (c *Client) GetAction(ctx context.Context, mint string) (*ActionMetadata, error) {
	u := fmt.Sprintf("%s/api/v1/actions/buy/%s", c.baseURL, url.PathEscape(mint))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var meta ActionMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("fetched action metadata", "mint", mint, "title", meta.Title)
	return &meta, nil
}

// Buy requests an unsigned purchase transaction for a mint.
func (c *Client) Buy(ctx context.Context, mint, account string) (*ActionResult, error) {
	u := fmt.Sprintf("%s/api/v1/actions/buy/%s", c.baseURL, url.PathEscape(mint))
	return c.postAction(ctx, u, account)
}

// Bid requests an unsigned bid transaction escrowing amountSOL for a mint.
func (c *Client) Bid(ctx context.Context, mint, account string, amountSOL float64) (*ActionResult, error) {
	u := fmt.Sprintf("%s/api/v1/actions/bid/%s?amount=%s",
		c.baseURL, url.PathEscape(mint), strconv.FormatFloat(amountSOL, 'f', -1, 64))
	return c.postAction(ctx, u, account)
}

func (c *Client) postAction(ctx context.Context, u, account string) (*ActionResult, error) {
	body, err := json.Marshal(map[string]string{"account": account})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result ActionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("action transaction received", "url", u)
	return &result, nil
}

// parseErrorResponse extracts the error message from a failed API response.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, apiErr.Error)
}
