package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// DefaultBaseURL is the CDP API endpoint.
const DefaultBaseURL = "https://" + apiHost

// RetryConfig bounds the backoff applied to rate limits and server errors.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig is used unless WithRetry overrides it.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  5,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     10 * time.Second,
	Multiplier:   2,
}

// Client talks to the CDP REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *Credentials
	retry      RetryConfig
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithBaseURL points the client at another endpoint, such as a test server.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) error {
		if url == "" {
			return fmt.Errorf("coinbase: base url is empty")
		}
		c.baseURL = url
		return nil
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("coinbase: http client is nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg RetryConfig) ClientOption {
	return func(c *Client) error {
		if cfg.MaxAttempts < 1 {
			return fmt.Errorf("coinbase: max attempts must be at least 1")
		}
		c.retry = cfg
		return nil
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("coinbase: logger is nil")
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates an API client authenticating with creds.
func NewClient(creds *Credentials, opts ...ClientOption) (*Client, error) {
	if creds == nil {
		return nil, fmt.Errorf("coinbase: credentials are nil")
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		creds:  creds,
		retry:  DefaultRetryConfig,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// do sends one request, retrying retryable failures with jittered backoff.
func (c *Client) do(ctx context.Context, method, path string, body, result any, walletAuth bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("coinbase: marshal request: %w", err)
		}
	}

	var err error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		err = c.once(ctx, method, path, payload, result, walletAuth, attempt)
		if err == nil || !IsRetryable(err) || attempt == c.retry.MaxAttempts-1 {
			return err
		}

		delay := c.backoff(attempt)
		if apiErr, ok := err.(*APIError); ok && apiErr.RetryAfter > 0 {
			delay = apiErr.RetryAfter
		}
		c.logger.Debug("retrying cdp request", "method", method, "path", path, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, result any, walletAuth bool, attempt int) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("coinbase: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.creds.BearerToken(method, path)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	if walletAuth {
		walletToken, err := c.creds.WalletAuthToken(method, path, payload)
		if err != nil {
			return err
		}
		req.Header.Set("X-Wallet-Auth", walletToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coinbase: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coinbase: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := classify(resp.StatusCode, resp.Header, data)
		apiErr.Method, apiErr.Path, apiErr.Attempt = method, path, attempt
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("coinbase: decode response: %w", err)
		}
	}
	return nil
}

// backoff is InitialDelay * Multiplier^attempt capped at MaxDelay, with +/-25% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.retry.InitialDelay) * math.Pow(c.retry.Multiplier, float64(attempt))
	if delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	jitter := (rand.Float64() - 0.5) * delay / 2
	if d := time.Duration(delay + jitter); d > 0 {
		return d
	}
	return c.retry.InitialDelay
}
