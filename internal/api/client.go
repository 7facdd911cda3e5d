// Package api provides the REST client for the chat server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Arch0125/zulip-mobile/internal/logging"
)

const (
	defaultRequestTimeout = 30 * time.Second

	// Long polls must outlive the server's own event-queue hold time.
	defaultLongPollTimeout = 100 * time.Second
)

// Client is an authenticated REST client for one realm.
type Client struct {
	baseURL    *url.URL
	email      string
	apiKey     string
	httpClient *http.Client
	longPoll   *http.Client
	userAgent  string
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for regular requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLongPollTimeout sets the timeout for event long polls.
func WithLongPollTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.longPoll = &http.Client{Timeout: d}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the given server URL, authenticating
// with the account email and its API key.
func NewClient(server, email, apiKey string, opts ...Option) (*Client, error) {
	if server == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if email == "" || apiKey == "" {
		return nil, fmt.Errorf("email and api key are required")
	}

	base, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server URL must be http or https, got %q", base.Scheme)
	}

	c := &Client{
		baseURL:    base,
		email:      email,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		longPoll:   &http.Client{Timeout: defaultLongPollTimeout},
		userAgent:  "zulip-mobile-go",
		logger:     logging.Component("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + "/api/v1/" + strings.TrimLeft(path, "/")
}

// do performs one API request and decodes the JSON response into out.
// Error envelopes are surfaced as *APIError.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, params url.Values, out any) error {
	endpoint := c.endpoint(path)

	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	} else if params != nil {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.SetBasicAuth(c.email, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if apiErr := decodeAPIError(resp.StatusCode, data); apiErr != nil {
		c.logger.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Msg("api error response")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, c.httpClient, http.MethodGet, path, params, out)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, c.httpClient, http.MethodPost, path, params, out)
}

func (c *Client) delete(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, c.httpClient, http.MethodDelete, path, params, out)
}
