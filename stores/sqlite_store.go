package stores

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aiweb-chat/aiweb/models"
)

// SQLiteStore implements ChatStore for SQLite databases.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(config *StoreConfig) (*SQLiteStore, error) {
	if config.Type != "sqlite" {
		return nil, fmt.Errorf("invalid store type for SQLite store: %s", config.Type)
	}

	store := &SQLiteStore{path: config.Connection}

	if err := store.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	return store, nil
}

// NewSQLiteStoreSimple creates a new SQLite store with just a file path.
func NewSQLiteStoreSimple(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStore(NewStoreConfig("sqlite", dbPath))
}

// Connect establishes a connection to the SQLite database.
func (s *SQLiteStore) Connect() error {
	// Cascading deletes require the foreign_keys pragma.
	dsn := s.path
	if !strings.Contains(dsn, "_foreign_keys") {
		if strings.Contains(dsn, "?") {
			dsn += "&_foreign_keys=on"
		} else {
			dsn += "?_foreign_keys=on"
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	s.db = db

	if err := s.db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (s *SQLiteStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateConversation inserts a new conversation row and returns the entity.
func (s *SQLiteStore) CreateConversation(model, provider, title string) (*Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if title == "" {
		title = defaultTitle()
	}

	conv := Conversation{
		ID:       newID("conv"),
		Title:    title,
		Model:    model,
		Provider: provider,
	}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

// GetConversation fetches a single conversation by id.
func (s *SQLiteStore) GetConversation(id string) (*Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var conv Conversation
	if err := s.db.First(&conv, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversation %s: %w", id, err)
	}
	return &conv, nil
}

// GetConversations lists conversations, most recently updated first.
func (s *SQLiteStore) GetConversations(limit, offset int) ([]Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var convs []Conversation
	if err := s.db.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes a conversation; its messages go with it through
// the cascading foreign key.
func (s *SQLiteStore) DeleteConversation(id string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Delete(&Conversation{}, "id = ?", id).Error
}

// SaveUserMessage appends a user turn and bumps the conversation's updated_at.
func (s *SQLiteStore) SaveUserMessage(conversationID, content, model, provider string) (*Message, error) {
	msg := Message{
		ID:             newID("msg"),
		ConversationID: conversationID,
		Content:        content,
		Role:           "user",
		Model:          model,
		Provider:       provider,
	}
	return saveMessage(s.db, &msg)
}

// SaveAssistantMessage appends an assistant turn with its usage accounting and
// bumps the conversation's updated_at.
func (s *SQLiteStore) SaveAssistantMessage(conversationID, content, model, provider string, usage *models.Usage) (*Message, error) {
	msg := Message{
		ID:             newID("msg"),
		ConversationID: conversationID,
		Content:        content,
		Role:           "assistant",
		Model:          model,
		Provider:       provider,
	}
	if usage != nil {
		msg.UsagePromptTokens = usage.PromptTokens
		msg.UsageCompletionTokens = usage.CompletionTokens
		msg.UsageTotalTokens = usage.TotalTokens
	}
	return saveMessage(s.db, &msg)
}

// GetMessages returns a conversation's messages in chronological replay order.
func (s *SQLiteStore) GetMessages(conversationID string) ([]Message, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var msgs []Message
	if err := s.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return msgs, nil
}

// saveMessage inserts a message row and bumps the parent conversation's
// updated_at in one transaction. Shared by all GORM-backed stores.
func saveMessage(db *gorm.DB, msg *Message) (*Message, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message record: %w", err)
		}
		if err := tx.Model(&Conversation{}).Where("id = ?", msg.ConversationID).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to bump conversation updated_at: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}
