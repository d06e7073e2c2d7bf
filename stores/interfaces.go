package stores

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aiweb-chat/aiweb/models"
)

// Conversation holds metadata for a chat conversation. Deleting a conversation
// cascades to its messages through the foreign key.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Title     string    `gorm:"size:255;not null;default:''" json:"title"`
	Model     string    `gorm:"size:50;not null" json:"model"`
	Provider  string    `gorm:"size:50;not null" json:"provider"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

// Message is one turn within a conversation. Append-only.
type Message struct {
	ID                    string    `gorm:"primaryKey;size:64" json:"id"`
	ConversationID        string    `gorm:"size:64;index;not null" json:"conversation_id"`
	Content               string    `gorm:"type:text;not null" json:"content"`
	Role                  string    `gorm:"size:16;not null" json:"role"` // "user", "assistant"
	Model                 string    `gorm:"size:50" json:"model,omitempty"`
	Provider              string    `gorm:"size:50" json:"provider,omitempty"`
	UsagePromptTokens     int       `gorm:"default:0" json:"usage_prompt_tokens"`
	UsageCompletionTokens int       `gorm:"default:0" json:"usage_completion_tokens"`
	UsageTotalTokens      int       `gorm:"default:0" json:"usage_total_tokens"`
	CreatedAt             time.Time `gorm:"index" json:"created_at"`
}

// ChatStore abstracts the database operations for conversations and messages.
type ChatStore interface {
	// Conversation operations
	CreateConversation(model, provider, title string) (*Conversation, error)
	GetConversation(id string) (*Conversation, error)
	GetConversations(limit, offset int) ([]Conversation, error)
	DeleteConversation(id string) error

	// Message operations
	SaveUserMessage(conversationID, content, model, provider string) (*Message, error)
	SaveAssistantMessage(conversationID, content, model, provider string, usage *models.Usage) (*Message, error)
	GetMessages(conversationID string) ([]Message, error)

	// Connection management
	Connect() error
	Close() error

	// Health check
	Ping() error
}

// StoreConfig holds configuration for database stores.
type StoreConfig struct {
	Type       string            `json:"type"`       // "sqlite", "postgres", "mysql"
	Connection string            `json:"connection"` // connection string
	Options    map[string]string `json:"options"`
}

// NewStoreConfig creates a new store configuration.
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// newID builds a time-based id with a random suffix, unique enough within a
// single process: prefix_unixmillis_suffix.
func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// defaultTitle is used when a conversation is created without a title.
func defaultTitle() string {
	return fmt.Sprintf("Conversation %s", time.Now().Format("2006-01-02 15:04:05"))
}
