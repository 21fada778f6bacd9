package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/idempotency"
)

// KeyBlockManager issues monotonically increasing idempotency keys from blocks
// reserved on the shared counter, so most keys cost no round trip
type KeyBlockManager struct {
	repo      idempotency.Repository
	blockSize int64
	logger    *slog.Logger

	mu   sync.Mutex
	next int64
	end  int64
}

// NewKeyBlockManager creates a KeyBlockManager reserving blockSize keys at a time
func NewKeyBlockManager(repo idempotency.Repository, blockSize int64, logger *slog.Logger) billing.KeyIssuer {
	if blockSize <= 0 {
		blockSize = 1
	}
	return &KeyBlockManager{
		repo:      repo,
		blockSize: blockSize,
		logger:    logger,
	}
}

// NextKey returns the next unused key, reserving a new block when the current one is spent
func (m *KeyBlockManager) NextKey(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.next >= m.end {
		start, err := m.repo.ReserveKeyBlock(ctx, m.blockSize)
		if err != nil {
			m.logger.Error("Failed to reserve idempotency key block", "size", m.blockSize, "error", err)
			return 0, fmt.Errorf("%w: %w", idempotency.ErrKeyNotGenerated, err)
		}
		m.next, m.end = start, start+m.blockSize
		m.logger.Debug("Reserved idempotency key block", "start", start, "size", m.blockSize)
	}

	key := m.next
	m.next++
	return key, nil
}
