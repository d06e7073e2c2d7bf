package stores

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aiweb-chat/aiweb/models"
)

// PostgresStore implements ChatStore for PostgreSQL databases.
type PostgresStore struct {
	db  *gorm.DB
	dsn string
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(config *StoreConfig) (*PostgresStore, error) {
	if config.Type != "postgres" {
		return nil, fmt.Errorf("invalid store type for PostgreSQL store: %s", config.Type)
	}

	store := &PostgresStore{dsn: config.Connection}

	if err := store.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	return store, nil
}

// NewPostgresStoreSimple creates a new PostgreSQL store with just a DSN.
func NewPostgresStoreSimple(dsn string) (*PostgresStore, error) {
	return NewPostgresStore(NewStoreConfig("postgres", dsn))
}

// Connect establishes a connection to the PostgreSQL database.
func (s *PostgresStore) Connect() error {
	db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	s.db = db

	if err := s.db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
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
func (s *PostgresStore) Ping() error {
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
func (s *PostgresStore) CreateConversation(model, provider, title string) (*Conversation, error) {
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
func (s *PostgresStore) GetConversation(id string) (*Conversation, error) {
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
func (s *PostgresStore) GetConversations(limit, offset int) ([]Conversation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var convs []Conversation
	if err := s.db.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes a conversation and, via the cascading foreign
// key, its messages.
func (s *PostgresStore) DeleteConversation(id string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Delete(&Conversation{}, "id = ?", id).Error
}

// SaveUserMessage appends a user turn and bumps the conversation's updated_at.
func (s *PostgresStore) SaveUserMessage(conversationID, content, model, provider string) (*Message, error) {
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

// SaveAssistantMessage appends an assistant turn with its usage accounting.
func (s *PostgresStore) SaveAssistantMessage(conversationID, content, model, provider string, usage *models.Usage) (*Message, error) {
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
func (s *PostgresStore) GetMessages(conversationID string) ([]Message, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var msgs []Message
	if err := s.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return msgs, nil
}
