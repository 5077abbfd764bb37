package testrail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a high-level client for the TestRail API.
type Client struct {
	baseURL    string
	user       string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

// New creates a new Client for the given TestRail instance. The user and
// apiKey are sent as basic auth credentials on every request.
func New(baseURL, user, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("testrail: baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    baseURL,
		user:       user,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// BaseURL returns the normalized base URL the client was constructed with.
func (c *Client) BaseURL() string { return c.baseURL }

// endpointURL builds {base}/index.php?/api/v2/{endpoint}, appending params
// with "&" since the endpoint path already lives in the query string.
func (c *Client) endpointURL(endpoint string, params url.Values) string {
	u := fmt.Sprintf("%s/index.php?/api/v2/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u += "&" + params.Encode()
	}
	return u
}

// getJSON executes a GET against a TestRail endpoint and decodes the JSON
// response into dst. If the response has an error status, it returns an
// *APIError.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, operation string, dst any) error {
	u := c.endpointURL(endpoint, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.SetBasicAuth(c.user, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.InfoContext(ctx, "API request", "operation", operation, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var errRS errorRS
		if json.Unmarshal(respBody, &errRS) == nil && errRS.Error != "" {
			return newAPIError(operation, resp.StatusCode, errRS.Error)
		}
		msg := string(respBody)
		if msg == "" {
			msg = resp.Status
		}
		return newAPIError(operation, resp.StatusCode, msg)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}

// errorRS is the standard TestRail error response shape.
type errorRS struct {
	Error string `json:"error"`
}
