// Package providers maps provider keys to stream adapters.
package providers

import (
	"context"
	"errors"

	"github.com/aiweb-chat/aiweb/models"
	"github.com/aiweb-chat/aiweb/providers/anthropic"
	"github.com/aiweb-chat/aiweb/providers/deepseek"
	"github.com/aiweb-chat/aiweb/providers/doubao"
	"github.com/aiweb-chat/aiweb/providers/google"
	"github.com/aiweb-chat/aiweb/providers/hunyuan"
	"github.com/aiweb-chat/aiweb/providers/kimi"
	"github.com/aiweb-chat/aiweb/providers/openai"
	"github.com/aiweb-chat/aiweb/providers/qwen"
)

// GetStreamProvider resolves a provider key to its adapter. Unknown keys fall
// back to kimi so a request never fails on routing alone.
func GetStreamProvider(provider string) models.StreamProvider {
	switch provider {
	case "qwen":
		return qwen.New()
	case "doubao":
		return doubao.New()
	case "hunyuan":
		return hunyuan.New()
	case "deepseek":
		return deepseek.New()
	case "kimi":
		return kimi.New()
	case "openai":
		return openai.New()
	case "anthropic":
		return anthropic.New()
	case "google":
		return google.New()
	default:
		return kimi.New()
	}
}

// Collect drains a provider stream and returns the final response. Used by
// the non-streaming endpoint so both endpoints share one adapter path.
func Collect(ctx context.Context, provider models.StreamProvider, request models.ChatRequest) (*models.ChatResponse, error) {
	chunkChan, errChan := provider.GenerateStreamResponse(ctx, request)

	for {
		select {
		case chunk, ok := <-chunkChan:
			if !ok {
				return nil, errors.New("provider stream ended without a final response")
			}
			if chunk.Done {
				return chunk.Response, nil
			}
		case err, ok := <-errChan:
			if !ok {
				// Closed error channel carries no signal; wait on chunks only.
				errChan = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
