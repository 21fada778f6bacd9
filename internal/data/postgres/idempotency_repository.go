package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/transactionflow-billing/internal/domain/idempotency"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

// IdempotencyRepository implements the idempotency.Repository interface for PostgreSQL
type IdempotencyRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewIdempotencyRepository creates a new PostgreSQL idempotency repository
func NewIdempotencyRepository(logger *slog.Logger, db *persistence.PostgresDB) idempotency.Repository {
	return &IdempotencyRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Get returns the stored entry for key, or nil when the key is unseen
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*idempotency.Entry, error) {
	query := `
		SELECT key, request_method, request_path, request_parameters_hash, response_code, response_body, created_at
		FROM idempotency_keys
		WHERE key = $1
	`

	var entry idempotency.Entry
	err := r.querier.QueryRow(ctx, query, key).Scan(
		&entry.Key,
		&entry.RequestMethod,
		&entry.RequestPath,
		&entry.RequestParametersHash,
		&entry.ResponseCode,
		&entry.ResponseBody,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get idempotency key", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	return &entry, nil
}

// Create inserts the entry. An existing key is left untouched and reported with inserted=false.
func (r *IdempotencyRepository) Create(ctx context.Context, entry *idempotency.Entry) (bool, error) {
	query := `
		INSERT INTO idempotency_keys (key, request_method, request_path, request_parameters_hash, response_code, response_body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		entry.Key,
		entry.RequestMethod,
		entry.RequestPath,
		entry.RequestParametersHash,
		entry.ResponseCode,
		entry.ResponseBody,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create idempotency key", "key", entry.Key, "error", err)
		return false, fmt.Errorf("failed to create idempotency key: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// DeleteOlderThan purges entries created before cutoff and returns how many were removed
func (r *IdempotencyRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM idempotency_keys
		WHERE created_at < $1
	`

	result, err := r.querier.Exec(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("Failed to purge idempotency keys", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to purge idempotency keys: %w", err)
	}

	return result.RowsAffected(), nil
}

// ReserveKeyBlock advances the shared counter by size in one statement and returns
// the first key of the reserved block
func (r *IdempotencyRepository) ReserveKeyBlock(ctx context.Context, size int64) (int64, error) {
	if size <= 0 {
		return 0, fmt.Errorf("invalid key block size %d", size)
	}

	query := `
		UPDATE idempotency_key_counter
		SET next_value = next_value + $1
		WHERE id = 1
		RETURNING next_value - $1
	`

	var start int64
	if err := r.querier.QueryRow(ctx, query, size).Scan(&start); err != nil {
		r.logger.Error("Failed to reserve idempotency key block", "size", size, "error", err)
		return 0, fmt.Errorf("failed to reserve idempotency key block: %w", err)
	}

	return start, nil
}
