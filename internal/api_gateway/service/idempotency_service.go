package service

import (
	"context"
	"time"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/idempotency"
)

// IdempotencyServiceImpl implements the IdempotencyService interface
type IdempotencyServiceImpl struct {
	keys billing.KeyIssuer
	now  func() time.Time
}

// NewIdempotencyService creates a new idempotency service
func NewIdempotencyService(keys billing.KeyIssuer) IdempotencyService {
	return &IdempotencyServiceImpl{
		keys: keys,
		now:  time.Now,
	}
}

// IssueKey returns the next server generated key
func (s *IdempotencyServiceImpl) IssueKey(ctx context.Context) (int64, error) {
	return s.keys.NextKey(ctx)
}

// DeriveKey hashes params together with the current time
func (s *IdempotencyServiceImpl) DeriveKey(params map[string]string) string {
	return idempotency.DeriveKey(params, s.now())
}
