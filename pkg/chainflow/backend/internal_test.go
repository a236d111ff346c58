package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_ModelPriority(t *testing.T) {
	c := NewOpenAIClient("key", WithDefaultModel("default-model"))

	// Request model wins over client default.
	req := c.buildRequest(Request{Model: "request-model"})
	assert.Equal(t, "request-model", req.Model)

	// Client default used when request has none.
	req = c.buildRequest(Request{})
	assert.Equal(t, "default-model", req.Model)
}

func TestBuildRequest_MessageConversion(t *testing.T) {
	c := NewOpenAIClient("key")

	req := c.buildRequest(Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hello"},
		},
		Temperature: 0.4,
		MaxTokens:   128,
	})

	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "be brief", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, float32(0.4), req.Temperature)
	assert.Equal(t, 128, req.MaxTokens)
}

func TestIsRetryableAPIError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"api 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"api 503", &openai.APIError{HTTPStatusCode: 503}, true},
		{"api 500", &openai.APIError{HTTPStatusCode: 500}, true},
		{"api 400", &openai.APIError{HTTPStatusCode: 400}, false},
		{"api 401", &openai.APIError{HTTPStatusCode: 401}, false},
		{"rate limit message", errors.New("Rate limit reached for requests"), true},
		{"timeout message", errors.New("request timeout"), true},
		{"plain failure", errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableAPIError(tt.err))
		})
	}
}

func TestError_WrapsAndClassifies(t *testing.T) {
	cause := errors.New("boom")
	err := NewError("complete", cause, true)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "backend complete")
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(cause))
}
