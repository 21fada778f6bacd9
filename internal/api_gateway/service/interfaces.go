package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

// AccountService defines the interface for customer and account operations
type AccountService interface {
	// CreateCustomer stores a customer with its main account.
	// A non-positive maxAllowedAccounts falls back to the configured default.
	CreateCustomer(ctx context.Context, name string, maxAllowedAccounts int) (*account.Customer, *account.Account, error)

	// CreateAccount opens a new account for the customer
	// Returns ErrMaxAllowedAccountsExceeded when the customer is at its limit
	CreateAccount(ctx context.Context, customerID int64) (*account.Account, error)

	// GetAccount retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccount(ctx context.Context, id int64) (*account.Account, error)

	// ListCustomerAccounts returns the customer's accounts ordered by id
	// Returns ErrCustomerNotFound if the customer doesn't exist
	ListCustomerAccounts(ctx context.Context, customerID int64) ([]*account.Account, error)

	DeactivateAccount(ctx context.Context, id int64) (*account.Account, error)
	ActivateAccount(ctx context.Context, id int64) (*account.Account, error)
	// DeleteAccount removes the account and returns the archived snapshot
	DeleteAccount(ctx context.Context, id int64) (*account.Snapshot, error)
	RotateMainAccount(ctx context.Context, customerID int64) (*account.Account, error)
	// DeleteCustomer removes the customer with its accounts and returns the archived snapshot.
	// Returns ErrCustomerHoldsFunds while any account has a balance.
	DeleteCustomer(ctx context.Context, customerID int64) (*account.CustomerSnapshot, error)
}

// TransferService defines the interface for client initiated transfers
type TransferService interface {
	// TransferMoney resolves both sides according to mode and moves amount plus fee
	TransferMoney(ctx context.Context, mode transfer.Mode, senderRef, receiverRef int64, amount, fee decimal.Decimal) (*transfer.Record, error)

	// GetTransfer retrieves a committed transfer record
	GetTransfer(ctx context.Context, id int64) (*transfer.Record, error)
}

// IdempotencyService hands out idempotency keys to clients
type IdempotencyService interface {
	// IssueKey returns a fresh server generated numeric key
	IssueKey(ctx context.Context) (int64, error)

	// DeriveKey builds a key from the request parameters
	DeriveKey(params map[string]string) string
}
