package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIClient implements Client for OpenAI-compatible chat completion APIs.
//
// A custom base URL lets the same client serve other providers that speak
// the OpenAI wire protocol (DeepSeek, Zai, local gateways). One client
// instance serves one provider endpoint.
type OpenAIClient struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// OpenAIOption configures OpenAIClient.
type OpenAIOption func(*OpenAIClient, *openai.ClientConfig)

// NewOpenAIClient creates a client authenticated with apiKey.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)

	c := &OpenAIClient{
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c, &cfg)
	}

	c.api = openai.NewClientWithConfig(cfg)
	return c
}

// WithBaseURL points the client at a non-OpenAI provider endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(_ *OpenAIClient, cfg *openai.ClientConfig) {
		if url != "" {
			cfg.BaseURL = url
		}
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) OpenAIOption {
	return func(c *OpenAIClient, _ *openai.ClientConfig) {
		c.model = model
	}
}

// WithCallTimeout sets the default per-call timeout.
// Requests carrying their own Timeout override it.
func WithCallTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient, _ *openai.ClientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit throttles outgoing calls to rps requests per second with the
// given burst. Calls block in Complete until the limiter admits them or the
// context is cancelled.
func WithRateLimit(rps float64, burst int) OpenAIOption {
	return func(c *OpenAIClient, _ *openai.ClientConfig) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(callCtx); err != nil {
			return nil, NewError("complete", err, false)
		}
	}

	resp, err := c.api.CreateChatCompletion(callCtx, c.buildRequest(req))
	if err != nil {
		return nil, NewError("complete", err, isRetryableAPIError(err))
	}

	out := &Response{
		Model:    resp.Model,
		Duration: time.Since(start),
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}

	return out, nil
}

// buildRequest converts a backend Request into the SDK's wire type.
func (c *OpenAIClient) buildRequest(req Request) openai.ChatCompletionRequest {
	// Model priority: request > client default.
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}
}

// isRetryableAPIError classifies SDK errors as transient or permanent.
func isRetryableAPIError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503, 529:
			return true
		}
		return isRetryableMessage(fmt.Sprint(apiErr.Message))
	}

	return isRetryableMessage(err.Error())
}
