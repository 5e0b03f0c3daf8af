package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashendes/store-dashboard/internal/metrics"
	"github.com/ashendes/store-dashboard/internal/patterns"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const (
	storesPath      = "/api/stores"
	storePath       = "/api/stores/{storeId}"
	storeOrdersPath = "/api/stores/{storeId}/orders"
)

// StatusError is returned when the upstream API answers with a non-2xx status
type StatusError struct {
	Operation  string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d (%s)", e.Operation, e.StatusCode, e.URL)
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Client fetches stores and orders from the upstream store API
type Client struct {
	http    *resty.Client
	breaker *patterns.CircuitBreakerWrapper
	baseURL string
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithCircuitBreaker routes every call through cb
func WithCircuitBreaker(cb *patterns.CircuitBreakerWrapper) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// NewClient creates an upstream client rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("upstream base URL is required")
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(patterns.DefaultUpstreamTimeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the upstream API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CircuitStatus returns the breaker snapshot, or nil when no breaker is configured
func (c *Client) CircuitStatus() *patterns.CircuitStatus {
	if c.breaker == nil {
		return nil
	}
	status := c.breaker.Status()
	return &status
}

// ListStores fetches every store, accepting a bare list or a {"stores": [...]} envelope
func (c *Client) ListStores(ctx context.Context) ([]any, error) {
	body, err := c.get(ctx, "list_stores", storesPath, nil)
	if err != nil {
		return nil, err
	}
	return NormalizeStores(body), nil
}

// GetStore fetches a single store record
func (c *Client) GetStore(ctx context.Context, storeID string) (any, error) {
	return c.get(ctx, "get_store", storePath, map[string]string{"storeId": storeID})
}

// GetStoreOrders fetches a store's orders, accepting a bare list or an
// {"orders": [...]} envelope
func (c *Client) GetStoreOrders(ctx context.Context, storeID string) ([]any, error) {
	body, err := c.get(ctx, "get_store_orders", storeOrdersPath, map[string]string{"storeId": storeID})
	if err != nil {
		return nil, err
	}
	return NormalizeOrders(body), nil
}

func (c *Client) get(ctx context.Context, operation, path string, params map[string]string) (any, error) {
	call := func() (interface{}, error) {
		return c.do(ctx, operation, path, params)
	}
	if c.breaker == nil {
		return call()
	}
	return c.breaker.Execute(call)
}

func (c *Client) do(ctx context.Context, operation, path string, params map[string]string) (any, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("upstream %s: %w", operation, err)
	}

	if !resp.IsSuccess() {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "status_error").Inc()
		log.WithFields(log.Fields{
			"operation": operation,
			"status":    resp.StatusCode(),
			"url":       resp.Request.URL,
		}).Debug("Upstream returned non-success status")
		return nil, &StatusError{
			Operation:  operation,
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
		}
	}

	body, err := decodeJSON(resp.Body())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "decode_error").Inc()
		return nil, fmt.Errorf("upstream %s: failed to parse response: %w", operation, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(operation, "success").Inc()
	return body, nil
}

// decodeJSON keeps numbers as json.Number so passthrough payloads are
// re-encoded exactly as received
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return body, nil
}
