package backend

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockClient is a scriptable Client for tests and examples.
//
// It records every request it receives and serves canned responses:
// a fixed string, a cycling sequence, a custom function, or an error.
// Safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	response  string
	responses []string
	nextIdx   int
	err       error
	fn        func(ctx context.Context, req Request) (*Response, error)

	// Calls records every request received, in order.
	Calls []Request
}

// NewMockClient creates a mock that always returns the given content.
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// WithResponses makes the mock cycle through the given contents,
// one per call. Returns the mock for chaining.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.nextIdx = 0
	return m
}

// WithError makes every call fail with err. Returns the mock for chaining.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc replaces the canned behavior with a custom function.
// Call recording still applies. Returns the mock for chaining.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}

	if m.fn != nil {
		fn := m.fn
		m.mu.Unlock()
		return fn(ctx, req)
	}

	content := m.response
	if len(m.responses) > 0 {
		content = m.responses[m.nextIdx%len(m.responses)]
		m.nextIdx++
	}
	m.mu.Unlock()

	return &Response{
		Content:      content,
		Model:        req.Model,
		FinishReason: "stop",
		Usage:        approximateUsage(req, content),
		Duration:     time.Millisecond,
	}, nil
}

// CallCount returns the number of calls received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	req := m.Calls[len(m.Calls)-1]
	return &req
}

// Reset clears recorded calls and restarts the response sequence.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.nextIdx = 0
}

// approximateUsage fabricates plausible token counts for a mock call.
func approximateUsage(req Request, content string) TokenUsage {
	in := 1
	for _, msg := range req.Messages {
		in += len(strings.Fields(msg.Content))
	}
	out := 1 + len(strings.Fields(content))
	return TokenUsage{
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
	}
}
