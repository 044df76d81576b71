// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api defines the collaborator contracts the console consumes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/siemspeak/internal/filter"
	"github.com/jeranaias/siemspeak/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout for a single request (default: 30s)
	Timeout time.Duration

	// MaxRetries for transient failures on idempotent requests (default: 2)
	MaxRetries int

	// RetryDelay between retries (default: 500ms)
	RetryDelay time.Duration

	// SuggestRate is the steady-state suggestion requests per second (default: 4)
	SuggestRate float64

	// SuggestBurst is the suggestion burst size (default: 4)
	SuggestBurst int

	// SuggestCacheSize is the number of cached suggestion lists (default: 256)
	SuggestCacheSize int

	// Logger receives request logs (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:          "http://127.0.0.1:5000",
		Timeout:          30 * time.Second,
		MaxRetries:       2,
		RetryDelay:       500 * time.Millisecond,
		SuggestRate:      4,
		SuggestBurst:     4,
		SuggestCacheSize: 256,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client implements Backend over HTTP. Safe for concurrent use.
//
// Example:
//
//	client := api.NewClient(&api.ClientConfig{BaseURL: "http://siem:5000"})
//	res, err := client.Search(ctx, filters)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *lru.Cache[string, []string]
	logger     *zap.Logger
}

var _ Backend = (*Client)(nil)

// NewClient creates a client, filling zero config values with defaults.
func NewClient(config *ClientConfig) *Client {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = def.RetryDelay
	}
	if config.SuggestRate <= 0 {
		config.SuggestRate = def.SuggestRate
	}
	if config.SuggestBurst <= 0 {
		config.SuggestBurst = def.SuggestBurst
	}
	if config.SuggestCacheSize <= 0 {
		config.SuggestCacheSize = def.SuggestCacheSize
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, _ := lru.New[string, []string](config.SuggestCacheSize)

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.SuggestRate), config.SuggestBurst),
		cache:      cache,
		logger:     logger.Named("api"),
	}
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Submit posts a question to /ask.
func (c *Client) Submit(ctx context.Context, question string) (*model.ResponsePayload, error) {
	var resp AskResponse
	if err := c.do(ctx, http.MethodPost, "/ask", AskRequest{Question: question}, &resp, false); err != nil {
		return nil, err
	}
	if resp.Reply == nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no reply"}
	}
	if len(resp.Reply.GeneratedQuery) == 0 {
		resp.Reply.GeneratedQuery = resp.GeneratedQuery
	}
	return resp.Reply, nil
}

// Search posts the filter set to /search.
func (c *Client) Search(ctx context.Context, filters filter.Set) (*model.SearchResult, error) {
	if filters == nil {
		filters = filter.Set{}
	}
	var result model.SearchResult
	if err := c.do(ctx, http.MethodPost, "/search", filters, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

// Suggest fetches completions for a partial question. Results are cached
// per normalized query and uncached calls are rate limited.
func (c *Client) Suggest(ctx context.Context, partial string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(partial))
	if cached, ok := c.cache.Get(key); ok {
		return append([]string(nil), cached...), nil
	}
	if !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	var resp SuggestResponse
	path := "/suggest?q=" + url.QueryEscape(partial)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}
	c.cache.Add(key, resp.Suggestions)
	return append([]string(nil), resp.Suggestions...), nil
}

// LoadHistory fetches the persisted conversation.
func (c *Client) LoadHistory(ctx context.Context) ([]model.HistoryItem, error) {
	var resp ConversationResponse
	if err := c.do(ctx, http.MethodGet, "/conversation", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Conversation, nil
}

// ClearHistory asks the backend to drop its conversation.
func (c *Client) ClearHistory(ctx context.Context) error {
	var resp StatusResponse
	return c.do(ctx, http.MethodPost, "/clear", nil, &resp, true)
}

// Health checks the backend /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp StatusResponse
	return c.do(ctx, http.MethodGet, "/health", nil, &resp, true)
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one JSON request. Idempotent requests are retried on
// connection failures.
func (c *Client) do(ctx context.Context, method, path string, in, out any, idempotent bool) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeBadRequest, Message: "failed to marshal request", Cause: err}
		}
	}

	attempts := 1
	if idempotent {
		attempts += c.config.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ErrTimeout
			case <-time.After(c.config.RetryDelay):
			}
		}

		lastErr = c.once(ctx, method, path, body, out)
		if lastErr == nil || TypeOf(lastErr) != ErrTypeConnection {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: ErrUnavailable.Message, Cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// statusError converts a non-2xx response into a ClientError, preferring
// the backend's own error message.
func statusError(resp *http.Response) error {
	errType := ErrTypeServer
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		errType = ErrTypeRateLimited
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		errType = ErrTypeBadRequest
	}

	var apiErr ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return &ClientError{Type: errType, Message: apiErr.Error, Status: resp.StatusCode}
	}
	return &ClientError{
		Type:    errType,
		Message: "request failed: " + resp.Status,
		Status:  resp.StatusCode,
	}
}
