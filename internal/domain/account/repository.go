package account

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	// GetByCustomerID returns the customer's accounts ordered by id; empty when none exist
	GetByCustomerID(ctx context.Context, customerID int64) ([]*Account, error)

	// LockForUpdate acquires a row lock for the rest of the transaction
	LockForUpdate(ctx context.Context, id int64) (*Account, error)
	// LockByCustomerID locks every account of the customer in ascending id order
	LockByCustomerID(ctx context.Context, customerID int64) ([]*Account, error)

	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, lastUpdated time.Time) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetMain(ctx context.Context, id int64, main bool) error
	Delete(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// CustomerRepository defines customer persistence operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	// LockForUpdate serializes lifecycle transitions of one customer
	LockForUpdate(ctx context.Context, id int64) (*Customer, error)
	// Delete removes the customer row; its accounts must be gone already
	Delete(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) CustomerRepository
}

// Archiver stores snapshots of deleted accounts and customers outside the primary store
type Archiver interface {
	Archive(ctx context.Context, snapshot *Snapshot) error
	ArchiveCustomer(ctx context.Context, snapshot *CustomerSnapshot) error
}

// ErrAccountNotFound indicates a missing account. CustomerID is set when the
// lookup was for a customer's main account.
type ErrAccountNotFound struct {
	AccountID  int64
	CustomerID int64
}

func (e ErrAccountNotFound) Error() string {
	if e.AccountID == 0 && e.CustomerID != 0 {
		return "account could not be found, customer has no active main account: " + strconv.FormatInt(e.CustomerID, 10)
	}
	return "account could not be found, please make sure that the account exists: " + strconv.FormatInt(e.AccountID, 10)
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	// A zero target matches any ErrAccountNotFound
	if t.AccountID == 0 && t.CustomerID == 0 {
		return true
	}
	return e.AccountID == t.AccountID && e.CustomerID == t.CustomerID
}

// ErrAccountsNotFound indicates a customer without any account
type ErrAccountsNotFound struct {
	CustomerID int64
}

func (e ErrAccountsNotFound) Error() string {
	return "no accounts found for customer: " + strconv.FormatInt(e.CustomerID, 10)
}

// Is implements the errors.Is interface for ErrAccountsNotFound
func (e ErrAccountsNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountsNotFound)
	if !ok {
		return false
	}
	return t.CustomerID == 0 || e.CustomerID == t.CustomerID
}

// ErrCustomerNotFound indicates a missing customer
type ErrCustomerNotFound struct {
	CustomerID int64
}

func (e ErrCustomerNotFound) Error() string {
	return "customer not found: " + strconv.FormatInt(e.CustomerID, 10)
}

// Is implements the errors.Is interface for ErrCustomerNotFound
func (e ErrCustomerNotFound) Is(target error) bool {
	t, ok := target.(ErrCustomerNotFound)
	if !ok {
		return false
	}
	return t.CustomerID == 0 || e.CustomerID == t.CustomerID
}
