package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests
	DefaultHTTPTimeout = 60 * time.Second
	// DefaultMaxRetries is the default maximum number of retry attempts
	DefaultMaxRetries = 2
	// DefaultBaseRetryDelay is the base delay for exponential backoff
	DefaultBaseRetryDelay = 2 * time.Second
	// DefaultMaxBackoff caps a single backoff sleep
	DefaultMaxBackoff = 30 * time.Second
	// RateLimitBackoffMultiplier is the multiplier for rate limit backoff (3^n)
	RateLimitBackoffMultiplier = 3
)

// ClientOptions configures a Client
type ClientOptions struct {
	BaseURL            string
	Timeout            time.Duration
	MaxRetries         int // 0 uses the default, negative disables retries
	MaxBackoff         time.Duration
	RateLimitPerMinute int
	BurstPercent       int
}

// Client handles HTTP requests to an Ollama server
type Client struct {
	baseURL         string
	httpClient      *http.Client
	rateLimiterPool *RateLimiterPool
	rateLimit       int
	logger          *slog.Logger
	maxRetries      int
	baseRetryDelay  time.Duration
	maxBackoff      time.Duration
}

// NewClient creates a new Ollama API client
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	maxRetries := opts.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiterPool: NewRateLimiterPool(opts.BurstPercent),
		rateLimit:       opts.RateLimitPerMinute,
		logger:          logger,
		maxRetries:      maxRetries,
		baseRetryDelay:  DefaultBaseRetryDelay,
		maxBackoff:      maxBackoff,
	}
}

// Generate calls /api/generate and returns the response text
func (c *Client) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	req := GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: opts,
	}

	var resp GenerateResponse
	if err := c.post(ctx, "/api/generate", model, req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// Chat calls /api/chat with a system and a user message and returns the
// assistant text
func (c *Client) Chat(ctx context.Context, model, system, user string, opts Options) (string, error) {
	req := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  false,
		Options: opts,
	}

	var resp ChatResponse
	if err := c.post(ctx, "/api/chat", model, req, &resp); err != nil {
		return "", err
	}
	return resp.Content(), nil
}

// post sends a request with rate limiting and exponential backoff retries
func (c *Client) post(ctx context.Context, path, model string, body, out interface{}) error {
	if err := c.rateLimiterPool.Wait(ctx, c.baseURL+":"+model, c.rateLimit); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			sleepDuration := c.backoff(attempt, lastErr)

			c.logger.Warn("Retrying LLM request",
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"backoff", sleepDuration,
				"model", model,
				"is_rate_limit", isRateLimitError(lastErr))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleepDuration):
			}
		}

		err := c.doRequest(ctx, path, body, out)
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) backoff(attempt int, lastErr error) time.Duration {
	backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseRetryDelay

	// For rate limit errors, use longer delays (3^n)
	if isRateLimitError(lastErr) {
		backoff = time.Duration(math.Pow(RateLimitBackoffMultiplier, float64(attempt))) * c.baseRetryDelay
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}

	jitter := time.Duration(float64(backoff) * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1))
	return backoff + jitter
}

func (c *Client) doRequest(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{
			Message:    fmt.Sprintf("failed to reach LLM server at %s: %v", c.baseURL, err),
			StatusCode: 0,
			Retryable:  true,
		}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: httpResp.StatusCode,
			Retryable:  isStatusCodeRetryable(httpResp.StatusCode),
		}
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		} else {
			apiErr.Message = fmt.Sprintf("%s | %s", http.StatusText(httpResp.StatusCode), strings.TrimSpace(string(respBody)))
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is an APIError marked retryable
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}

func isRateLimitError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func isStatusCodeRetryable(statusCode int) bool {
	// Retry on rate limits and server errors
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}

// APIError represents an error returned by the LLM backend
type APIError struct {
	Message    string
	StatusCode int
	Type       string
	Code       string
	Retryable  bool
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}
