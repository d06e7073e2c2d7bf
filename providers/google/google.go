// Package google is a simulated provider. It echoes the prompt back as a
// single chunk so the pipeline can run without credentials.
package google

import (
	"context"
	"fmt"

	"github.com/aiweb-chat/aiweb/models"
)

const DefaultModel = "gemini-pro"

// StreamProvider implements models.StreamProvider with simulated output.
type StreamProvider struct{}

// New creates a simulated Google stream provider.
func New() *StreamProvider {
	return &StreamProvider{}
}

// GenerateStreamResponse emits one echo chunk followed by the done frame.
func (p *StreamProvider) GenerateStreamResponse(ctx context.Context, request models.ChatRequest) (<-chan models.StreamChunk, <-chan error) {
	chunkChan := make(chan models.StreamChunk)
	errChan := make(chan error, 1)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		model := request.Model
		if model == "" {
			model = DefaultModel
		}
		message := fmt.Sprintf("[Gemini %s] reply to: %s", model, request.Message)

		select {
		case chunkChan <- models.StreamChunk{Chunk: message}:
		case <-ctx.Done():
			return
		}

		final := models.ChatResponse{
			Message:        message,
			ConversationID: request.ConversationIDOrNew(),
			Model:          model,
			Provider:       request.ProviderOrDefault("google"),
			Usage: &models.Usage{
				PromptTokens:     len(request.Message),
				CompletionTokens: 50,
				TotalTokens:      len(request.Message) + 50,
			},
		}
		select {
		case chunkChan <- models.StreamChunk{Done: true, Response: &final}:
		case <-ctx.Done():
		}
	}()

	return chunkChan, errChan
}
