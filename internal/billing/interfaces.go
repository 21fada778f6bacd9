// Package billing declares the core transfer and idempotency engine. Implementations
// live in the components subpackage.
package billing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/idempotency"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

// TransferResolver turns a routing mode and two references into concrete accounts
type TransferResolver interface {
	Resolve(ctx context.Context, mode transfer.Mode, senderRef, receiverRef int64) (*transfer.Participants, error)
}

// TransferExecutor moves funds between two resolved accounts and records the movement
type TransferExecutor interface {
	// Execute runs the transfer in its own transaction. Failures match transfer.ErrTransferFailed.
	Execute(ctx context.Context, p transfer.Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*transfer.Record, error)
	// ExecuteInTx runs the transfer on the caller's transaction and returns failures unwrapped
	ExecuteInTx(ctx context.Context, tx pgx.Tx, p transfer.Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*transfer.Record, error)
}

// AccountLifecycle applies account state transitions while keeping exactly one
// active main account per customer
type AccountLifecycle interface {
	CreateCustomer(ctx context.Context, name string, maxAllowedAccounts int) (*account.Customer, *account.Account, error)
	CreateAccount(ctx context.Context, customerID int64) (*account.Account, error)
	Deactivate(ctx context.Context, accountID int64) (*account.Account, error)
	Activate(ctx context.Context, accountID int64) (*account.Account, error)
	Delete(ctx context.Context, accountID int64) (*account.Snapshot, error)
	RotateMain(ctx context.Context, customerID int64) (*account.Account, error)
	// DeleteCustomer archives and removes a customer with all of its accounts.
	// It fails with account.ErrCustomerHoldsFunds while any account has a balance.
	DeleteCustomer(ctx context.Context, customerID int64) (*account.CustomerSnapshot, error)
}

// Operation is the side effect guarded by an idempotency key
type Operation func(ctx context.Context) (idempotency.Response, error)

// IdempotencyGuard runs an operation at most once per key
type IdempotencyGuard interface {
	// RunOnce returns the stored response with replayed=true when the key already completed
	RunOnce(ctx context.Context, req idempotency.Request, op Operation) (resp idempotency.Response, replayed bool, err error)
}

// KeyIssuer hands out server-generated idempotency keys
type KeyIssuer interface {
	NextKey(ctx context.Context) (int64, error)
}
