package models

import (
	"context"
	"fmt"
	"time"
)

// ChatRequest is the normalized input for one exchange. Field names follow the
// JSON shape the web client sends.
type ChatRequest struct {
	Message        string   `json:"message" binding:"required"`
	ConversationID string   `json:"conversationId,omitempty"`
	Model          string   `json:"model"`
	MaxTokens      *int     `json:"maxTokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	Provider       string   `json:"provider,omitempty"`
}

// Usage holds the token accounting a provider reports for one exchange.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is produced exactly once per exchange, streaming or not.
type ChatResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	Model          string `json:"model"`
	Provider       string `json:"provider,omitempty"`
	Usage          *Usage `json:"usage,omitempty"`
}

// StreamChunk is the wire unit sent to the client: one JSON object per line.
// Invariant: Done implies Response != nil and Chunk == ""; !Done implies
// Response == nil.
type StreamChunk struct {
	Chunk    string        `json:"chunk"`
	Done     bool          `json:"done"`
	Response *ChatResponse `json:"response"`
}

// StreamProvider translates a normalized chat request into one vendor call and
// emits a normalized chunk sequence. Pre-flight failures (missing credentials,
// non-2xx vendor responses) arrive on the error channel before any chunk.
// Both channels are closed when the stream ends.
type StreamProvider interface {
	GenerateStreamResponse(ctx context.Context, request ChatRequest) (<-chan StreamChunk, <-chan error)
}

// ProviderOrDefault returns the request's provider key, falling back to the
// given default when the client sent none.
func (r ChatRequest) ProviderOrDefault(def string) string {
	if r.Provider != "" {
		return r.Provider
	}
	return def
}

// ConversationIDOrNew returns the request's conversation id, or a fresh
// time-based id when the exchange starts a new conversation.
func (r ChatRequest) ConversationIDOrNew() string {
	if r.ConversationID != "" {
		return r.ConversationID
	}
	return fmt.Sprintf("conv_%d", time.Now().UnixMilli())
}
