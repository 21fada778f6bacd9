package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/transactionflow-billing/internal/domain/transfer"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

// TransferRepository implements the transfer.Repository interface for PostgreSQL
type TransferRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransferRepository creates a new PostgreSQL ledger record repository
func NewTransferRepository(logger *slog.Logger, db *persistence.PostgresDB) transfer.Repository {
	return &TransferRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *TransferRepository) WithTx(tx pgx.Tx) transfer.Repository {
	return &TransferRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a pending record and sets its generated ID
func (r *TransferRepository) Create(ctx context.Context, record *transfer.Record) error {
	query := `
		INSERT INTO transfers (sender_customer_id, sender_account_id, receiver_customer_id, receiver_account_id, amount, fee, type, committed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		record.SenderCustomerID,
		record.SenderAccountID,
		record.ReceiverCustomerID,
		record.ReceiverAccountID,
		record.Amount,
		record.Fee,
		int16(record.Type),
		record.Committed,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		r.logger.Error("Failed to create transfer record",
			"sender_account_id", record.SenderAccountID,
			"receiver_account_id", record.ReceiverAccountID,
			"error", err,
		)
		return fmt.Errorf("failed to create transfer record: %w", err)
	}

	return nil
}

// MarkCommitted flips a pending record to committed
func (r *TransferRepository) MarkCommitted(ctx context.Context, id int64) error {
	query := `
		UPDATE transfers
		SET committed = TRUE
		WHERE id = $1 AND committed = FALSE
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to mark transfer committed", "id", id, "error", err)
		return fmt.Errorf("failed to mark transfer committed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transfer.ErrRecordNotFound{ID: id}
	}

	return nil
}

// GetByID retrieves a record by its ID
func (r *TransferRepository) GetByID(ctx context.Context, id int64) (*transfer.Record, error) {
	query := `
		SELECT id, sender_customer_id, sender_account_id, receiver_customer_id, receiver_account_id, amount, fee, type, committed, created_at
		FROM transfers
		WHERE id = $1
	`

	var record transfer.Record
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.SenderCustomerID,
		&record.SenderAccountID,
		&record.ReceiverCustomerID,
		&record.ReceiverAccountID,
		&record.Amount,
		&record.Fee,
		&record.Type,
		&record.Committed,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transfer.ErrRecordNotFound{ID: id}
		}
		r.logger.Error("Failed to get transfer record", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get transfer record: %w", err)
	}

	return &record, nil
}
