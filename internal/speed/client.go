package speed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	serverhttp "github.com/dvcrn/ledspeed/internal/http"
	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/rs/zerolog"
)

// Path is the resource both operations target, relative to the base URL.
const Path = "speed"

const (
	maxBodySize     = 1 << 20
	maxErrorExcerpt = 256
)

// Client reads and replaces the speed settings of one board.
type Client struct {
	httpClient serverhttp.HTTPClient
	endpoint   string
	log        *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(c serverhttp.HTTPClient) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger replaces the process logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// NewClient creates a client for the board whose API root is baseURL,
// e.g. "http://192.168.1.50".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		endpoint: u.JoinPath(Path).String(),
		log:      logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = serverhttp.NewHTTPClient()
	}
	return c, nil
}

// Endpoint returns the absolute URL of the speed resource.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetSpeeds fetches the board's current settings.
func (c *Client) GetSpeeds(ctx context.Context) (*Settings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// SetSpeeds replaces the board's settings and returns the values it
// actually applied, which may differ from s.
func (c *Client) SetSpeeds(ctx context.Context, s Settings) (*Settings, error) {
	bodyBytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Settings, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request execution error: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("url", c.endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Board responded")

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     req.Method,
			URL:        c.endpoint,
			StatusCode: resp.StatusCode,
			Body:       excerpt(respBody),
		}
	}

	var result Settings
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorExcerpt {
		s = s[:maxErrorExcerpt] + "..."
	}
	return s
}
