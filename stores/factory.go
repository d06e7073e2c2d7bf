package stores

import (
	"fmt"
)

// NewStore creates a new chat store based on the configuration.
func NewStore(config *StoreConfig) (ChatStore, error) {
	switch config.Type {
	case "sqlite":
		return NewSQLiteStore(config)
	case "postgres":
		return NewPostgresStore(config)
	case "mysql":
		return NewMySQLStore(config)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// NewSQLiteStoreDefault creates a SQLite store with default settings.
func NewSQLiteStoreDefault() (ChatStore, error) {
	return NewSQLiteStoreSimple("chat_history.sqlite")
}
