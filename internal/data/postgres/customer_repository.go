package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

// CustomerRepository implements the account.CustomerRepository interface for PostgreSQL
type CustomerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCustomerRepository creates a new PostgreSQL customer repository
func NewCustomerRepository(logger *slog.Logger, db *persistence.PostgresDB) account.CustomerRepository {
	return &CustomerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *CustomerRepository) WithTx(tx pgx.Tx) account.CustomerRepository {
	return &CustomerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new customer and sets its generated ID
func (r *CustomerRepository) Create(ctx context.Context, c *account.Customer) error {
	query := `
		INSERT INTO customers (name, max_allowed_accounts, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.querier.QueryRow(ctx, query, c.Name, c.MaxAllowedAccounts, c.CreatedAt).Scan(&c.ID); err != nil {
		r.logger.Error("Failed to create customer", "error", err)
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by its ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*account.Customer, error) {
	query := `
		SELECT id, name, max_allowed_accounts, created_at
		FROM customers
		WHERE id = $1
	`

	return r.get(ctx, "get customer", id, query)
}

// LockForUpdate locks the customer row for the rest of the transaction
func (r *CustomerRepository) LockForUpdate(ctx context.Context, id int64) (*account.Customer, error) {
	query := `
		SELECT id, name, max_allowed_accounts, created_at
		FROM customers
		WHERE id = $1
		FOR UPDATE
	`

	return r.get(ctx, "lock customer for update", id, query)
}

func (r *CustomerRepository) get(ctx context.Context, op string, id int64, query string) (*account.Customer, error) {
	var c account.Customer
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.MaxAllowedAccounts,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrCustomerNotFound{CustomerID: id}
		}
		r.logger.Error("Failed to "+op, "id", id, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return &c, nil
}

// Delete removes the customer row
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM customers
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete customer", "id", id, "error", err)
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return account.ErrCustomerNotFound{CustomerID: id}
	}

	return nil
}
