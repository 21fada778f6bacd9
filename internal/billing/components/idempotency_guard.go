package components

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/idempotency"
)

// IdempotencyGuardImpl implements the IdempotencyGuard interface
type IdempotencyGuardImpl struct {
	repo   idempotency.Repository
	locks  *KeyLockTable
	logger *slog.Logger
}

// NewIdempotencyGuard creates a new IdempotencyGuardImpl
func NewIdempotencyGuard(repo idempotency.Repository, locks *KeyLockTable, logger *slog.Logger) billing.IdempotencyGuard {
	return &IdempotencyGuardImpl{
		repo:   repo,
		locks:  locks,
		logger: logger,
	}
}

// RunOnce holds the key's shard lock across lookup, execution and persistence.
// Server errors are returned without being stored so the client may retry. When the
// outcome cannot be stored the fresh response is returned along with ErrKeyNotSet.
func (g *IdempotencyGuardImpl) RunOnce(ctx context.Context, req idempotency.Request, op billing.Operation) (idempotency.Response, bool, error) {
	logger := g.logger.With("idempotency_key", req.Key)

	unlock, err := g.locks.Lock(ctx, req.Key)
	if err != nil {
		return idempotency.Response{}, false, err
	}
	defer unlock()

	stored, err := g.repo.Get(ctx, req.Key)
	if err != nil {
		return idempotency.Response{}, false, fmt.Errorf("%w: %w", idempotency.ErrKeySearch, err)
	}
	if stored != nil {
		if !stored.Matches(req) {
			logger.Warn("Idempotency key reused for a different request",
				"method", req.Method,
				"path", req.Path,
				"stored_method", stored.RequestMethod,
				"stored_path", stored.RequestPath,
			)
			return idempotency.Response{}, false, idempotency.ErrKeyReused
		}
		logger.Info("Replaying stored response", "status", stored.ResponseCode)
		return stored.Response(), true, nil
	}

	resp, err := op(ctx)
	if err != nil {
		return idempotency.Response{}, false, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Warn("Not storing server error response", "status", resp.StatusCode)
		return resp, false, nil
	}

	// the side effect already happened; a client disconnect must not lose its record
	persistCtx := context.WithoutCancel(ctx)
	inserted, err := g.repo.Create(persistCtx, idempotency.NewEntry(req, resp))
	if err != nil {
		logger.Error("Failed to store idempotent response", "status", resp.StatusCode, "error", err)
		return resp, false, fmt.Errorf("%w: %w", idempotency.ErrKeyNotSet, err)
	}
	if !inserted {
		winner, err := g.repo.Get(persistCtx, req.Key)
		if err == nil && winner != nil && winner.Matches(req) {
			logger.Warn("Lost idempotency insert race, returning stored response")
			return winner.Response(), true, nil
		}
	}

	return resp, false, nil
}
