// Package shopify is a minimal client of the platform's GraphQL Admin API:
// catalog listing and one-time app purchases.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"copydesk/internal/domain"
)

const (
	// DefaultAPIVersion is the Admin API version used when none is configured
	DefaultAPIVersion = "2024-10"
	// DefaultTimeout is the HTTP timeout for Admin API requests
	DefaultTimeout = 30 * time.Second
	// DefaultRequestsPerSecond keeps well under the per-store GraphQL cost budget
	DefaultRequestsPerSecond = 2.0

	defaultBurst = 4
	// defaultRetryAfter is the backoff after a throttled response without Retry-After
	defaultRetryAfter = 2 * time.Second
)

// Config configures the client.
type Config struct {
	APIVersion        string
	AccessToken       string
	RequestsPerSecond float64
	Timeout           time.Duration

	// Endpoint overrides the per-shop GraphQL URL, e.g. for tests.
	Endpoint func(shop string) string
}

// Client implements services.CatalogGateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	limiters map[string]*shopLimiter // shop -> limiter; the platform budgets per store
}

// shopLimiter is a token bucket plus the backoff window set by a throttled
// response.
type shopLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewClient creates an Admin API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Endpoint == nil {
		version := cfg.APIVersion
		cfg.Endpoint = func(shop string) string {
			return "https://" + shop + "/admin/api/" + version + "/graphql.json"
		}
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		limiters:   make(map[string]*shopLimiter),
	}
}

func (c *Client) limiterFor(shop string) *shopLimiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[shop]
	if !ok {
		l = &shopLimiter{limiter: rate.NewLimiter(rate.Limit(c.cfg.RequestsPerSecond), defaultBurst)}
		c.limiters[shop] = l
	}
	return l
}

// Wait blocks until the shop's budget allows another request.
func (l *shopLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}
	return l.limiter.Wait(ctx)
}

// backoff delays every request of the shop by d.
func (l *shopLimiter) backoff(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d <= 0 {
		d = defaultRetryAfter
	}
	l.retryAt = time.Now().Add(d)
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// query runs a GraphQL operation and decodes data into out. Failures are
// returned as *domain.UpstreamError for operation.
func (c *Client) query(ctx context.Context, operation, shop, query string, vars map[string]any, out any) error {
	start := time.Now()
	err := c.do(ctx, shop, query, vars, out)

	attrs := []any{
		"operation", operation,
		"shop", shop,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.logger.Warn("admin api request failed", append(attrs, "error", err)...)
		return domain.Upstream(operation, err)
	}
	c.logger.Debug("admin api request", attrs...)
	return nil
}

func (c *Client) do(ctx context.Context, shop, query string, vars map[string]any, out any) error {
	limiter := c.limiterFor(shop)
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(shop), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		limiter.backoff(retryAfter(resp.Header.Get("Retry-After")))
		return fmt.Errorf("throttled (status 429)")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		first := gqlResp.Errors[0]
		if first.Extensions.Code == "THROTTLED" {
			limiter.backoff(defaultRetryAfter)
		}
		return fmt.Errorf("graphql error: %s", first.Message)
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to parse data: %w", err)
	}
	return nil
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
