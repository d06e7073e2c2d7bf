package stores

import (
	"fmt"
	"log"

	"github.com/aiweb-chat/aiweb/models"
)

// DefaultMaxConversations caps how many conversations are retained.
const DefaultMaxConversations = 5

// ChatInteraction is the persisted outcome of one exchange.
type ChatInteraction struct {
	ConversationID   string   `json:"conversationId"`
	UserMessage      *Message `json:"userMessage"`
	AssistantMessage *Message `json:"assistantMessage"`
}

// ChatLogger orchestrates conversation/message persistence for completed
// exchanges and enforces the retention policy.
type ChatLogger struct {
	Store            ChatStore
	MaxConversations int
}

// NewChatLogger creates a logger over the given store. maxConversations <= 0
// falls back to the default cap.
func NewChatLogger(store ChatStore, maxConversations int) *ChatLogger {
	if maxConversations <= 0 {
		maxConversations = DefaultMaxConversations
	}
	return &ChatLogger{Store: store, MaxConversations: maxConversations}
}

// LogChatInteraction records a full exchange: resolves or creates the
// conversation, runs retention enforcement only when a conversation was
// created, then persists the user turn and the assistant turn in order.
func (l *ChatLogger) LogChatInteraction(request models.ChatRequest, response models.ChatResponse) (*ChatInteraction, error) {
	provider := request.ProviderOrDefault("kimi")

	conversationID := request.ConversationID
	if conversationID == "" {
		conv, err := l.Store.CreateConversation(request.Model, provider, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ID

		// Retention runs only on creation, never on appends, so an old
		// conversation kept alive by continued use is never evicted.
		if err := l.EnforceRetention(); err != nil {
			log.Printf("Warning: retention enforcement failed: %v", err)
		}
	}

	userMsg, err := l.Store.SaveUserMessage(conversationID, request.Message, request.Model, request.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	assistantMsg, err := l.Store.SaveAssistantMessage(conversationID, response.Message, response.Model, provider, response.Usage)
	if err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &ChatInteraction{
		ConversationID:   conversationID,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// EnforceRetention deletes every conversation beyond the MaxConversations-th
// newest by updated_at, cascading message deletion.
func (l *ChatLogger) EnforceRetention() error {
	all, err := l.Store.GetConversations(1000, 0)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(all) <= l.MaxConversations {
		return nil
	}

	stale := all[l.MaxConversations:]
	for _, conv := range stale {
		if err := l.Store.DeleteConversation(conv.ID); err != nil {
			return fmt.Errorf("failed to delete conversation %s: %w", conv.ID, err)
		}
	}

	log.Printf("Retention: deleted %d old conversations, keeping the %d most recent", len(stale), l.MaxConversations)
	return nil
}
