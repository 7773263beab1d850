package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIOptions configures an OpenAIClient
type OpenAIOptions struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	MaxRetries         int // negative disables SDK retries
	RateLimitPerMinute int
	BurstPercent       int
}

// OpenAIClient sends chat completions to an OpenAI-compatible endpoint
// through the official SDK
type OpenAIClient struct {
	client          openai.Client
	baseURL         string
	rateLimiterPool *RateLimiterPool
	rateLimit       int
	logger          *slog.Logger
}

// NewOpenAIClient creates a client. An empty API key is allowed for local
// servers that do not check authorization.
func NewOpenAIClient(opts OpenAIOptions, logger *slog.Logger) *OpenAIClient {
	reqOpts := []option.RequestOption{}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey("unused"))
		logger.Warn("LLM request without key", "endpoint", opts.BaseURL)
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	if opts.MaxRetries != 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(max(0, opts.MaxRetries)))
	}

	return &OpenAIClient{
		client:          openai.NewClient(reqOpts...),
		baseURL:         opts.BaseURL,
		rateLimiterPool: NewRateLimiterPool(opts.BurstPercent),
		rateLimit:       opts.RateLimitPerMinute,
		logger:          logger,
	}
}

// Complete sends a system and a user message and returns the first choice.
// An empty system prompt is omitted.
func (c *OpenAIClient) Complete(ctx context.Context, model, system, user string, opts Options) (string, error) {
	if err := c.rateLimiterPool.Wait(ctx, c.baseURL+":"+model, c.rateLimit); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(user))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    msgs,
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.NumPredict > 0 {
		params.MaxTokens = openai.Int(int64(opts.NumPredict))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", convertOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &APIError{Message: "no choices returned in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// convertOpenAIError maps SDK errors onto APIError so callers handle both
// backends the same way
func convertOpenAIError(err error) error {
	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		return &APIError{
			Message:    sdkErr.Message,
			StatusCode: sdkErr.StatusCode,
			Type:       sdkErr.Type,
			Code:       sdkErr.Code,
			Retryable:  isStatusCodeRetryable(sdkErr.StatusCode),
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &APIError{Message: err.Error(), Retryable: true}
}
