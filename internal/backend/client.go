// Package backend is the console's client for the upstream REST API.
package backend

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

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/observability"
)

const maxBodyBytes = 8 << 20

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Form is sent as application/x-www-form-urlencoded.
	Form url.Values
	// JSON is marshalled as the body when Form is nil.
	JSON any
	// Token is attached as a bearer credential when set.
	Token string
	// IdempotencyKey makes a non-idempotent method eligible for retry.
	IdempotencyKey string
}

// Response is a 2xx answer.
type Response struct {
	Status int
	Body   []byte
}

// Client calls the backend with a per-attempt timeout and a capped, linearly
// backed-off retry for connection-level failures of idempotent requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client; its Timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records retries.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a client for cfg.
func NewClient(cfg config.BackendConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Trim(cfg.APIPrefix, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		retries:    cfg.RetryCount,
		retryDelay: cfg.RetryDelay(),
		logger:     logger,
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if c.retries < 0 {
		c.retries = 0
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs req. Non-2xx answers yield *Error; transport failures yield
// *NetworkError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	retries := 0
	if idempotent(method) || req.IdempotencyKey != "" {
		retries = c.retries
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: c.retryDelay}, uint64(retries)),
		ctx,
	)

	var (
		resp     *Response
		attempts int
	)
	operation := func() error {
		attempts++
		var opErr error
		resp, opErr = c.once(ctx, method, target, body, contentType, req)
		if opErr == nil {
			return nil
		}
		if _, isAnswer := opErr.(*Error); isAnswer || !retryable(ctx, opErr) {
			return backoff.Permanent(opErr)
		}
		return opErr
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("backend call failed, retrying",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err))
		c.metrics.RecordBackendRetry(method)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if apiErr, ok := err.(*Error); ok {
			return nil, apiErr
		}
		return nil, &NetworkError{Method: method, Path: req.Path, Attempts: attempts, Err: err}
	}
	return resp, nil
}

func (c *Client) once(ctx context.Context, method, target string, body []byte, contentType string, req Request) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	started := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("latency", time.Since(started)))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &Error{Status: httpResp.StatusCode, Message: messageFromBody(payload), Body: payload}
	}
	return &Response{Status: httpResp.StatusCode, Body: payload}, nil
}

func encodeBody(req Request) ([]byte, string, error) {
	switch {
	case req.Form != nil:
		return []byte(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	case req.JSON != nil:
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return payload, "application/json", nil
	default:
		return nil, "", nil
	}
}

// linearBackOff waits step, 2*step, 3*step, ... between attempts.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
