package persistence

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"github.com/transactionflow-billing/internal/config"
)

// BoltDB wraps the embedded key/value file used for archived account snapshots.
type BoltDB struct {
	db     *bolt.DB
	logger *slog.Logger
}

// NewBoltDB opens (or creates) the archive file and makes sure every named bucket exists.
func NewBoltDB(logger *slog.Logger, cfg *config.ArchiveConfig, buckets ...string) (*BoltDB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Opened archive store", "path", cfg.Path)

	return &BoltDB{db: db, logger: logger}, nil
}

func (b *BoltDB) DB() *bolt.DB {
	return b.db
}

// Close releases the file lock.
func (b *BoltDB) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close archive store: %w", err)
	}
	b.logger.Info("Closed archive store")
	return nil
}
