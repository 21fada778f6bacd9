package account

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInsufficientFunds          = errors.New("insufficient funds, the sender balance cannot cover amount and fee")
	ErrInvalidAmount              = errors.New("amount must not be negative")
	ErrEmptyCustomerName          = errors.New("customer name cannot be empty")
	ErrInvalidMaxAllowedAccounts  = errors.New("max allowed accounts must be greater than 0")
	ErrAccountAlreadyDeactivated  = errors.New("cannot deactivate account because the account is already inactive")
	ErrAccountAlreadyActivated    = errors.New("cannot activate account because the account is already active")
	ErrMaxAllowedAccountsExceeded = errors.New("cannot create new account, the maximum allowed account count was reached")
	ErrCustomerHasNoOtherAccount  = errors.New("cannot complete operation, the customer has no other active account for this process")
	ErrArchiveFailed              = errors.New("an error occurred while archiving data")
	ErrAccountNotCreated          = errors.New("cannot create a new customer account, please try again later")
	ErrCustomerHoldsFunds         = errors.New("cannot delete customer, at least one account still holds a balance")
)

// Account is a single balance-holding account owned by a customer
type Account struct {
	ID          int64           `json:"id"`
	CustomerID  int64           `json:"customer_id"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"is_active"`
	IsMain      bool            `json:"is_main"`
	CreatedAt   time.Time       `json:"created_at"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Customer owns accounts; accounts reference it by CustomerID only
type Customer struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	MaxAllowedAccounts int       `json:"max_allowed_accounts"`
	CreatedAt          time.Time `json:"created_at"`
}

// Snapshot is the state of an account captured right before it is deleted
type Snapshot struct {
	Account         Account   `json:"account"`
	DrainTransferID *int64    `json:"drain_transfer_id,omitempty"`
	DeletedAt       time.Time `json:"deleted_at"`
}

// CustomerSnapshot is a deleted customer together with the accounts removed with it
type CustomerSnapshot struct {
	Customer  Customer  `json:"customer"`
	Accounts  []Account `json:"accounts"`
	DeletedAt time.Time `json:"deleted_at"`
}

// NewAccount creates an active account holding the initial bonus balance
func NewAccount(customerID int64, initialBalance decimal.Decimal, isMain bool) (*Account, error) {
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Account{
		CustomerID:  customerID,
		Balance:     initialBalance,
		IsActive:    true,
		IsMain:      isMain,
		CreatedAt:   now,
		LastUpdated: now,
	}, nil
}

// NewCustomer validates and creates a customer record
func NewCustomer(name string, maxAllowedAccounts int) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCustomerName
	}
	if maxAllowedAccounts <= 0 {
		return nil, ErrInvalidMaxAllowedAccounts
	}

	return &Customer{
		Name:               name,
		MaxAllowedAccounts: maxAllowedAccounts,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

// Credit adds amount to the balance
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)
	a.LastUpdated = time.Now().UTC()
	return nil
}

// Debit subtracts amount from the balance, never letting it go below zero
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !a.CanDebit(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	a.LastUpdated = time.Now().UTC()
	return nil
}

// CanDebit checks if the balance covers amount
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Snapshot captures the current state for archival
func (a *Account) Snapshot(drainTransferID *int64) *Snapshot {
	return &Snapshot{
		Account:         *a,
		DrainTransferID: drainTransferID,
		DeletedAt:       time.Now().UTC(),
	}
}

// Snapshot captures the customer and copies of its accounts for archival
func (c *Customer) Snapshot(accounts []*Account) *CustomerSnapshot {
	copies := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		copies = append(copies, *a)
	}
	return &CustomerSnapshot{
		Customer:  *c,
		Accounts:  copies,
		DeletedAt: time.Now().UTC(),
	}
}

// HoldsFunds reports whether any account has a positive balance
func HoldsFunds(accounts []*Account) bool {
	for _, a := range accounts {
		if a.Balance.IsPositive() {
			return true
		}
	}
	return false
}

// FindMain returns the active main account in accounts, or nil
func FindMain(accounts []*Account) *Account {
	for _, a := range accounts {
		if a.IsMain && a.IsActive {
			return a
		}
	}
	return nil
}

// CountActive returns how many accounts are active
func CountActive(accounts []*Account) int {
	n := 0
	for _, a := range accounts {
		if a.IsActive {
			n++
		}
	}
	return n
}

// NextMainCandidate returns the numerically-first active, non-main account other
// than exclude. Accounts are compared by ID regardless of slice order.
func NextMainCandidate(accounts []*Account, exclude int64) *Account {
	var candidate *Account
	for _, a := range accounts {
		if a.ID == exclude || a.IsMain || !a.IsActive {
			continue
		}
		if candidate == nil || a.ID < candidate.ID {
			candidate = a
		}
	}
	return candidate
}
