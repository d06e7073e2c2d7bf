package stores

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/aiweb-chat/aiweb/models"
)

// MySQLStore implements ChatStore for MySQL databases.
type MySQLStore struct {
	db  *gorm.DB
	dsn string
}

// NewMySQLStore creates a new MySQL store.
func NewMySQLStore(config *StoreConfig) (*MySQLStore, error) {
	if config.Type != "mysql" {
		return nil, fmt.Errorf("invalid store type for MySQL store: %s", config.Type)
	}

	store := &MySQLStore{dsn: config.Connection}

	if err := store.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return store, nil
}

// NewMySQLStoreSimple creates a new MySQL store with just a DSN.
func NewMySQLStoreSimple(dsn string) (*MySQLStore, error) {
	return NewMySQLStore(NewStoreConfig("mysql", dsn))
}

// Connect establishes a connection to the MySQL database.
func (s *MySQLStore) Connect() error {
	db, err := gorm.Open(mysql.Open(s.dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	s.db = db

	if err := s.db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
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
func (s *MySQLStore) Ping() error {
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
func (s *MySQLStore) CreateConversation(model, provider, title string) (*Conversation, error) {
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
func (s *MySQLStore) GetConversation(id string) (*Conversation, error) {
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
func (s *MySQLStore) GetConversations(limit, offset int) ([]Conversation, error) {
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
func (s *MySQLStore) DeleteConversation(id string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Delete(&Conversation{}, "id = ?", id).Error
}

// SaveUserMessage appends a user turn and bumps the conversation's updated_at.
func (s *MySQLStore) SaveUserMessage(conversationID, content, model, provider string) (*Message, error) {
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
func (s *MySQLStore) SaveAssistantMessage(conversationID, content, model, provider string, usage *models.Usage) (*Message, error) {
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
func (s *MySQLStore) GetMessages(conversationID string) ([]Message, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var msgs []Message
	if err := s.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return msgs, nil
}
