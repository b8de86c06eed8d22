package storage

import (
	"fmt"

	"github.com/macrolens/diettracker/config"
	"github.com/macrolens/diettracker/internal/domain"
)

// Store is a key-value store that owns a connection
type Store interface {
	domain.KeyValueStore
	Close() error
}

// Open builds the store selected by cfg.Type
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.QuotaBytes), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStore(cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
