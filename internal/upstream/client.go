// Package upstream is the outbound HTTP client shared by every external
// provider: geocoders, weather, places and country lookups.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 8 * time.Second

const maxErrorBody = 4 << 10

// StatusError is returned when a provider answers with a non-200 status.
// Body holds at most the first 4 KiB of the response.
type StatusError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", e.Provider, e.Endpoint, e.StatusCode)
}

// HasStatus reports whether err wraps a StatusError with the given code.
func HasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client performs JSON requests against one named provider.
type Client struct {
	provider string
	http     *http.Client
}

// New returns a Client whose calls are bounded by timeout.
func New(provider string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{provider: provider, http: &http.Client{Timeout: timeout}}
}

// Provider returns the provider name used in errors and metrics.
func (c *Client) Provider() string {
	return c.provider
}

// GetJSON performs a GET request and decodes the JSON response into dst.
func (c *Client) GetJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", c.provider, err)
	}
	return c.do(req, dst)
}

// PostFormJSON posts form as application/x-www-form-urlencoded and decodes
// the JSON response into dst.
func (c *Client) PostFormJSON(ctx context.Context, rawURL string, form url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, dst)
}

func (c *Client) do(req *http.Request, dst any) (err error) {
	start := time.Now()
	endpoint := redact(req.URL)
	defer func() { observe(c.provider, start, err) }()

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", c.provider, req.Method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Provider:   c.provider,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decoding response from %s: %w", c.provider, endpoint, err)
	}

	return nil
}

// redact drops the query string so API keys never reach logs or errors.
func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
