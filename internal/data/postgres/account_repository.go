// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the billing engine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

const accountColumns = `id, customer_id, balance, is_active, is_main, created_at, last_updated`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx, so several calls share one transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account and sets its generated ID. The partial unique index
// on (customer_id) WHERE is_main rejects a second main account.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (customer_id, balance, is_active, is_main, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		acc.CustomerID,
		acc.Balance,
		acc.IsActive,
		acc.IsMain,
		acc.CreatedAt,
		acc.LastUpdated,
	).Scan(&acc.ID)
	if err != nil {
		r.logger.Error("Failed to create account", "customer_id", acc.CustomerID, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByCustomerID retrieves every account of a customer ordered by ID
func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE customer_id = $1
		ORDER BY id ASC
	`

	return r.queryAccounts(ctx, "get accounts by customer", customerID, query)
}

// LockForUpdate obtains a pessimistic lock on the account and returns its current state.
// This must be used within a transaction.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

// LockByCustomerID locks all accounts of a customer. Rows are locked in ascending ID
// order, the same order transfers use, so the two never deadlock against each other.
func (r *AccountRepository) LockByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE customer_id = $1
		ORDER BY id ASC
		FOR UPDATE
	`

	return r.queryAccounts(ctx, "lock accounts by customer", customerID, query)
}

// UpdateBalance writes a balance computed under the row lock
func (r *AccountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, lastUpdated time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $1, last_updated = $2
		WHERE id = $3
	`

	return r.exec(ctx, "update account balance", id, query, balance, lastUpdated, id)
}

// SetActive flips the active flag
func (r *AccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `
		UPDATE accounts
		SET is_active = $1, last_updated = NOW()
		WHERE id = $2
	`

	return r.exec(ctx, "set account active flag", id, query, active, id)
}

// SetMain flips the main flag. Callers clear the old main before setting the new one.
func (r *AccountRepository) SetMain(ctx context.Context, id int64, main bool) error {
	query := `
		UPDATE accounts
		SET is_main = $1, last_updated = NOW()
		WHERE id = $2
	`

	return r.exec(ctx, "set account main flag", id, query, main, id)
}

// Delete removes the account row
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM accounts
		WHERE id = $1
	`

	return r.exec(ctx, "delete account", id, query, id)
}

func (r *AccountRepository) exec(ctx context.Context, op string, id int64, query string, args ...interface{}) error {
	result, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, "id", id, "error", err)
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

func (r *AccountRepository) queryAccounts(ctx context.Context, op string, customerID int64, query string) ([]*account.Account, error) {
	rows, err := r.querier.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error("Failed to "+op, "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	accounts := make([]*account.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "customer_id", customerID, "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.CustomerID,
		&acc.Balance,
		&acc.IsActive,
		&acc.IsMain,
		&acc.CreatedAt,
		&acc.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
