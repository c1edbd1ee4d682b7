package store

import (
	"fmt"
	"os"
	"path/filepath"

	"hg-go/internal/config"
	"hg-go/internal/hg"
)

// Migrator is implemented by stores with a versioned schema.
type Migrator interface {
	Migrate() error
	CheckMigrations() error
}

// NewStoreFromConfig creates a Store based on the storage config type.
func NewStoreFromConfig(cfg config.StorageConfig, logger hg.Logger) (hg.Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "hg.db"))
	case "badger":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for badger storage")
		}
		return OpenBadgerStore(BadgerConfig{
			Path:       filepath.Join(cfg.DataDir, "badger"),
			SyncWrites: true,
			Logger:     logger,
		})
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
