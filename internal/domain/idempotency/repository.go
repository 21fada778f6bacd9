package idempotency

import (
	"context"
	"time"
)

// Repository stores idempotency entries and the issued key counter
type Repository interface {
	// Get returns nil without error when the key has never completed
	Get(ctx context.Context, key string) (*Entry, error)
	// Create inserts entry unless the key exists; inserted is false when another writer won
	Create(ctx context.Context, entry *Entry) (inserted bool, err error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// ReserveKeyBlock reserves size consecutive keys and returns the first one
	ReserveKeyBlock(ctx context.Context, size int64) (int64, error)
}
