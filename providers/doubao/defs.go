package doubao

import "github.com/aiweb-chat/aiweb/models"

// ChatCompletionRequest is the OpenAI-compatible request body the Volcengine
// Ark endpoint accepts. MaxTokens is always sent; Doubao rejects absent or
// out-of-range values on some endpoint models.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

// Message content is either a plain string or a multimodal part list.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
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
