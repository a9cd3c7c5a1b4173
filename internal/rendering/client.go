package rendering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"webshot/internal/config"
	"webshot/internal/logging"
)

// DefaultBaseURL is the public API root of the rendering service
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Operation names a rendering endpoint
type Operation string

const (
	OperationScreenshot Operation = "screenshot"
	OperationContent    Operation = "content"
	OperationPDF        Operation = "pdf"
	OperationScrape     Operation = "scrape"
)

// Valid reports whether op is one of the supported rendering endpoints
func (op Operation) Valid() bool {
	switch op {
	case OperationScreenshot, OperationContent, OperationPDF, OperationScrape:
		return true
	}
	return false
}

// Target is the page to render: a URL, or an inline HTML document for the
// operations that accept one. Each non-blank field is sent, so both reach the
// service when both are set.
type Target struct {
	URL  string
	HTML string
}

// Client calls the browser rendering API. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	apiToken   string
	accountID  string
	baseURL    string
	presets    Presets
	httpClient *http.Client
	logger     logging.Logger
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for outbound calls
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseURL overrides the API root, mainly for tests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithPresets replaces the default option presets
func WithPresets(p Presets) ClientOption {
	return func(c *Client) {
		c.presets = p
	}
}

// NewClient builds a client from configuration. It fails with a *ConfigurationError
// when the API token or account id is missing.
func NewClient(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	var missing []string
	if strings.TrimSpace(cfg.Rendering.APIToken) == "" {
		missing = append(missing, "CLOUDFLARE_API_TOKEN")
	}
	if strings.TrimSpace(cfg.Rendering.AccountID) == "" {
		missing = append(missing, "CLOUDFLARE_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	baseURL := cfg.Rendering.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiToken:   cfg.Rendering.APIToken,
		accountID:  cfg.Rendering.AccountID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		presets:    PresetsFromConfig(cfg),
		httpClient: &http.Client{Timeout: cfg.Rendering.HTTPTimeout},
		logger:     logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Presets returns the option presets the client applies
func (c *Client) Presets() Presets {
	return c.presets
}

// AccountHint returns a shortened account id that is safe to display
func (c *Client) AccountHint() string {
	return MaskAccountID(c.accountID)
}

func (c *Client) endpoint(op Operation) string {
	return fmt.Sprintf("%s/accounts/%s/browser-rendering/%s", c.baseURL, c.accountID, op)
}

// RawResponse is an unmodified rendering service reply
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// send posts body to the operation endpoint and returns the reply without
// interpreting the status code.
func (c *Client) send(ctx context.Context, op Operation, body []byte, fields map[string]interface{}) (*RawResponse, error) {
	endpoint := c.endpoint(op)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	logFields := map[string]interface{}{
		"operation": string(op),
		"account":   c.AccountHint(),
	}
	for k, v := range fields {
		logFields[k] = v
	}
	c.logger.Debug("Sending rendering request", logFields)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Rendering request failed", map[string]interface{}{
			"operation": string(op),
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	c.logger.Debug("Rendering response received", map[string]interface{}{
		"operation":    string(op),
		"status_code":  resp.StatusCode,
		"content_type": resp.Header.Get("Content-Type"),
		"bytes":        len(respBody),
		"duration_ms":  time.Since(start).Milliseconds(),
	})

	return &RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// do sends payload as JSON and turns any non-200 status into a *RenderAPIError
func (c *Client) do(ctx context.Context, op Operation, payload Options) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
	}

	resp, err := c.send(ctx, op, body, map[string]interface{}{
		"payload_keys": payloadKeys(payload),
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := newRenderAPIError(op, resp.StatusCode, resp.Body)
		c.logger.Warn("Rendering service returned an error", map[string]interface{}{
			"operation":   string(op),
			"status_code": resp.StatusCode,
			"message":     apiErr.Message(),
		})
		return nil, apiErr
	}

	return resp.Body, nil
}

// Forward relays a caller-built JSON body to one of the supported operations and
// returns the service's reply as-is, whatever its status.
func (c *Client) Forward(ctx context.Context, op Operation, body []byte) (*RawResponse, error) {
	if !op.Valid() {
		return nil, &InvalidInputError{Operation: op, Reason: "unsupported operation"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return nil, &InvalidInputError{Operation: op, Reason: "request body must be JSON"}
	}
	return c.send(ctx, op, body, map[string]interface{}{"forwarded": true})
}

// MaskAccountID keeps the first five characters of an account id
func MaskAccountID(accountID string) string {
	if accountID == "" {
		return ""
	}
	if len(accountID) < 5 {
		return accountID + "..."
	}
	return accountID[:5] + "..."
}

func payloadKeys(payload Options) []string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
