package qwen

import "github.com/aiweb-chat/aiweb/models"

// ChatCompletionRequest is the OpenAI-compatible request body Qwen-hosting
// endpoints accept.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// StreamResponse is one SSE data envelope.
type StreamResponse struct {
	Choices []StreamChoice `json:"choices"`
	Usage   *models.Usage  `json:"usage,omitempty"`
}

type StreamChoice struct {
	Index int   `json:"index"`
	Delta Delta `json:"delta"`
}

type Delta struct {
	Content string `json:"content"`
}
