package backend

import (
	"encoding/json"
	"time"
)

// Request configures a model completion call.
type Request struct {
	// Messages is the conversation sent to the model. For chain steps this
	// is a single user message carrying the assembled prompt, optionally
	// preceded by a system message.
	Messages []Message `json:"messages"`

	// Provider identifies the serving backend (e.g. "openai", "deepseek").
	// Routing between providers is the caller's concern; a Client instance
	// serves one provider.
	Provider string `json:"provider,omitempty"`

	// Model is the model identifier passed through to the backend.
	Model string `json:"model,omitempty"`

	// Sampling configuration.
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Timeout bounds this single call. Zero means the client default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Message is a conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response is the output of a completion call.
type Response struct {
	// Content is the extracted text content. May be empty if the backend
	// returned a shape the client could not interpret; Raw then carries the
	// payload for tolerant extraction via ExtractText.
	Content string `json:"content"`

	// Raw is the wire payload, set when the client could not confidently
	// extract Content itself.
	Raw json.RawMessage `json:"raw,omitempty"`

	Model        string        `json:"model,omitempty"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Usage        TokenUsage    `json:"usage"`
	Duration     time.Duration `json:"duration"`
}

// Text returns the response's text content, falling back to tolerant
// extraction from the raw payload when the client left Content empty.
// Returns "" when no shape matches; never panics.
func (r *Response) Text() string {
	if r.Content != "" {
		return r.Content
	}
	if len(r.Raw) > 0 {
		return ExtractText(r.Raw)
	}
	return ""
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates another usage record into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
