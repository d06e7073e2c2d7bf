// Package openai is a simulated provider. It word-streams a canned reply with
// a small delay per chunk so the client-side streaming path can be exercised
// without credentials.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aiweb-chat/aiweb/models"
)

const DefaultModel = "gpt-3.5-turbo"

// chunkDelay paces the simulated stream.
const chunkDelay = 100 * time.Millisecond

// StreamProvider implements models.StreamProvider with simulated output.
type StreamProvider struct{}

// New creates a simulated OpenAI stream provider.
func New() *StreamProvider {
	return &StreamProvider{}
}

// GenerateStreamResponse streams a simulated reply one word at a time, then a
// final frame carrying the assembled response.
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

		message := fmt.Sprintf("This is a simulated streaming reply to %q. A real deployment would call the OpenAI API here.", request.Message)

		var full strings.Builder
		for _, word := range strings.Fields(message) {
			chunk := word + " "
			full.WriteString(chunk)
			select {
			case chunkChan <- models.StreamChunk{Chunk: chunk}:
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(chunkDelay):
			case <-ctx.Done():
				return
			}
		}

		final := models.ChatResponse{
			Message:        full.String(),
			ConversationID: request.ConversationIDOrNew(),
			Model:          model,
			Provider:       request.ProviderOrDefault("openai"),
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
