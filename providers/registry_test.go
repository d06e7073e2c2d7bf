package providers

import (
	"context"
	"testing"

	"github.com/aiweb-chat/aiweb/models"
	"github.com/aiweb-chat/aiweb/providers/anthropic"
	"github.com/aiweb-chat/aiweb/providers/deepseek"
	"github.com/aiweb-chat/aiweb/providers/kimi"
)

func TestGetStreamProviderKnownKeys(t *testing.T) {
	if _, ok := GetStreamProvider("deepseek").(*deepseek.StreamProvider); !ok {
		t.Errorf("expected deepseek adapter for key deepseek")
	}
	if _, ok := GetStreamProvider("anthropic").(*anthropic.StreamProvider); !ok {
		t.Errorf("expected anthropic adapter for key anthropic")
	}
}

func TestGetStreamProviderUnknownKeyFallsBackToKimi(t *testing.T) {
	for _, key := range []string{"", "gpt5", "unknown-vendor"} {
		if _, ok := GetStreamProvider(key).(*kimi.StreamProvider); !ok {
			t.Errorf("key %q: expected kimi fallback", key)
		}
	}
}

func TestCollectReturnsFinalResponse(t *testing.T) {
	provider := GetStreamProvider("anthropic")
	request := models.ChatRequest{Message: "hello", Provider: "anthropic"}

	resp, err := Collect(context.Background(), provider, request)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if resp == nil {
		t.Fatal("Collect returned nil response")
	}
	if resp.Message == "" {
		t.Error("final response message is empty")
	}
	if resp.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", resp.Provider)
	}
	if resp.ConversationID == "" {
		t.Error("final response has no conversation id")
	}
}

func TestCollectCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := GetStreamProvider("openai")
	_, err := Collect(ctx, provider, models.ChatRequest{Message: "hi", Provider: "openai"})
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}
