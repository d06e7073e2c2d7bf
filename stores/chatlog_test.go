package stores

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aiweb-chat/aiweb/models"
)

func newTestStore(t *testing.T) ChatStore {
	t.Helper()
	store, err := NewSQLiteStoreSimple(filepath.Join(t.TempDir(), "chat_test.sqlite"))
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetMessages(t *testing.T) {
	store := newTestStore(t)

	conv, err := store.CreateConversation("deepseek-chat", "deepseek", "")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("Expected generated conversation id")
	}
	if conv.Title == "" {
		t.Error("Expected a default title")
	}

	if _, err := store.SaveUserMessage(conv.ID, "hi", "deepseek-chat", "deepseek"); err != nil {
		t.Fatalf("SaveUserMessage failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	usage := &models.Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7}
	if _, err := store.SaveAssistantMessage(conv.ID, "Hello", "deepseek-chat", "deepseek", usage); err != nil {
		t.Fatalf("SaveAssistantMessage failed: %v", err)
	}

	msgs, err := store.GetMessages(conv.ID)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("Expected chronological user,assistant order, got %s,%s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[1].UsageTotalTokens != 7 {
		t.Errorf("Expected usage_total_tokens 7, got %d", msgs[1].UsageTotalTokens)
	}

	// Idempotence: a second read without writes returns identical results.
	again, err := store.GetMessages(conv.ID)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(again) != len(msgs) {
		t.Fatalf("Expected identical results, got %d then %d messages", len(msgs), len(again))
	}
	for i := range msgs {
		if msgs[i].ID != again[i].ID {
			t.Errorf("Message order changed between reads at index %d", i)
		}
	}
}

func TestSaveMessageBumpsConversationUpdatedAt(t *testing.T) {
	store := newTestStore(t)

	conv, err := store.CreateConversation("kimi-k2-0711-preview", "kimi", "")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := store.SaveUserMessage(conv.ID, "ping", "", ""); err != nil {
		t.Fatalf("SaveUserMessage failed: %v", err)
	}

	after, err := store.GetConversation(conv.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if !after.UpdatedAt.After(conv.UpdatedAt) {
		t.Errorf("Expected updated_at to advance: before %v, after %v", conv.UpdatedAt, after.UpdatedAt)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	store := newTestStore(t)

	conv, err := store.CreateConversation("qwen-plus", "qwen", "")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if _, err := store.SaveUserMessage(conv.ID, "hello", "", ""); err != nil {
		t.Fatalf("SaveUserMessage failed: %v", err)
	}

	if err := store.DeleteConversation(conv.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}

	msgs, err := store.GetMessages(conv.ID)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Expected cascade to delete messages, found %d", len(msgs))
	}
}

func TestEnforceRetentionDeletesOldest(t *testing.T) {
	store := newTestStore(t)
	logger := NewChatLogger(store, 5)

	var ids []string
	for i := 0; i < 6; i++ {
		conv, err := store.CreateConversation("deepseek-chat", "deepseek", "")
		if err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		ids = append(ids, conv.ID)
		time.Sleep(2 * time.Millisecond)
	}

	// Give the oldest conversation a message so the cascade is observable.
	if _, err := store.SaveUserMessage(ids[1], "keep-or-evict", "", ""); err != nil {
		t.Fatalf("SaveUserMessage failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	// ids[1] was just touched, so ids[0] is now the oldest by updated_at.

	if err := logger.EnforceRetention(); err != nil {
		t.Fatalf("EnforceRetention failed: %v", err)
	}

	remaining, err := store.GetConversations(100, 0)
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(remaining) != 5 {
		t.Fatalf("Expected 5 conversations after retention, got %d", len(remaining))
	}
	for _, conv := range remaining {
		if conv.ID == ids[0] {
			t.Error("Expected the oldest conversation to be evicted")
		}
	}
}

func TestLogChatInteraction_NewConversation(t *testing.T) {
	store := newTestStore(t)
	logger := NewChatLogger(store, 5)

	request := models.ChatRequest{
		Message:  "hi",
		Model:    "deepseek-chat",
		Provider: "deepseek",
	}
	response := models.ChatResponse{
		Message:  "Hello",
		Model:    "deepseek-chat",
		Provider: "deepseek",
		Usage:    &models.Usage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	}

	result, err := logger.LogChatInteraction(request, response)
	if err != nil {
		t.Fatalf("LogChatInteraction failed: %v", err)
	}
	if result.ConversationID == "" {
		t.Fatal("Expected a conversation id to be generated")
	}
	if result.UserMessage.Content != "hi" {
		t.Errorf("Expected user content 'hi', got %q", result.UserMessage.Content)
	}
	if result.AssistantMessage.Content != "Hello" {
		t.Errorf("Expected assistant content 'Hello', got %q", result.AssistantMessage.Content)
	}

	msgs, err := store.GetMessages(result.ConversationID)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 persisted messages, got %d", len(msgs))
	}
}

func TestLogChatInteraction_ExistingConversation(t *testing.T) {
	store := newTestStore(t)
	logger := NewChatLogger(store, 5)

	conv, err := store.CreateConversation("kimi-k2-0711-preview", "kimi", "")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	request := models.ChatRequest{
		Message:        "second turn",
		ConversationID: conv.ID,
		Model:          "kimi-k2-0711-preview",
		Provider:       "kimi",
	}
	response := models.ChatResponse{Message: "reply", Model: "kimi-k2-0711-preview", Provider: "kimi"}

	result, err := logger.LogChatInteraction(request, response)
	if err != nil {
		t.Fatalf("LogChatInteraction failed: %v", err)
	}
	if result.ConversationID != conv.ID {
		t.Errorf("Expected existing conversation %s to be reused, got %s", conv.ID, result.ConversationID)
	}

	convs, err := store.GetConversations(100, 0)
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(convs) != 1 {
		t.Errorf("Expected no new conversation, got %d", len(convs))
	}
}
