package handler

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

// CreateCustomerRequest represents a request to create a customer with its main account
type CreateCustomerRequest struct {
	Name               string `json:"name" binding:"required"`
	MaxAllowedAccounts int    `json:"max_allowed_accounts" binding:"min=0"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	MaxAllowedAccounts int              `json:"max_allowed_accounts"`
	CreatedAt          string           `json:"created_at"`
	MainAccount        *AccountResponse `json:"main_account,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          int64  `json:"id"`
	CustomerID  int64  `json:"customer_id"`
	Balance     string `json:"balance"`
	IsActive    bool   `json:"is_active"`
	IsMain      bool   `json:"is_main"`
	CreatedAt   string `json:"created_at"`
	LastUpdated string `json:"last_updated"`
}

// AccountListResponse represents the accounts of one customer
type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// DeletedAccountResponse represents the archived state of a deleted account
type DeletedAccountResponse struct {
	Account         AccountResponse `json:"account"`
	DrainTransferID *int64          `json:"drain_transfer_id,omitempty"`
	DeletedAt       string          `json:"deleted_at"`
}

// DeletedCustomerResponse represents the archived state of a deleted customer
type DeletedCustomerResponse struct {
	Customer  CustomerResponse  `json:"customer"`
	Accounts  []AccountResponse `json:"accounts"`
	DeletedAt string            `json:"deleted_at"`
}

// TransferRequest represents a request to move money. Mode is a routing name such as
// "CtoA" or its ordinal; amount and fee accept JSON numbers or strings.
type TransferRequest struct {
	Mode        string          `json:"mode" binding:"required"`
	SenderRef   int64           `json:"sender_ref" binding:"required,gt=0"`
	ReceiverRef int64           `json:"receiver_ref" binding:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
}

// TransferResponse represents a committed transfer in API responses
type TransferResponse struct {
	ID                 int64  `json:"id"`
	Type               string `json:"type"`
	SenderCustomerID   int64  `json:"sender_customer_id"`
	SenderAccountID    int64  `json:"sender_account_id"`
	ReceiverCustomerID int64  `json:"receiver_customer_id"`
	ReceiverAccountID  int64  `json:"receiver_account_id"`
	Amount             string `json:"amount"`
	Fee                string `json:"fee"`
	Committed          bool   `json:"committed"`
	CreatedAt          string `json:"created_at"`
}

// DeriveKeyRequest represents the parameters a derived idempotency key is built from
type DeriveKeyRequest struct {
	Parameters map[string]string `json:"parameters"`
}

// IdempotencyKeyResponse represents an idempotency key handed to a client
type IdempotencyKeyResponse struct {
	Key    string `json:"key"`
	Format string `json:"format"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:          acc.ID,
		CustomerID:  acc.CustomerID,
		Balance:     acc.Balance.StringFixed(transfer.MaxScale),
		IsActive:    acc.IsActive,
		IsMain:      acc.IsMain,
		CreatedAt:   acc.CreatedAt.Format(time.RFC3339),
		LastUpdated: acc.LastUpdated.Format(time.RFC3339),
	}
}

func mapCustomerToResponse(customer *account.Customer, mainAccount *account.Account) CustomerResponse {
	response := CustomerResponse{
		ID:                 customer.ID,
		Name:               customer.Name,
		MaxAllowedAccounts: customer.MaxAllowedAccounts,
		CreatedAt:          customer.CreatedAt.Format(time.RFC3339),
	}
	if mainAccount != nil {
		acc := mapAccountToResponse(mainAccount)
		response.MainAccount = &acc
	}
	return response
}

func mapSnapshotToResponse(snapshot *account.Snapshot) DeletedAccountResponse {
	return DeletedAccountResponse{
		Account:         mapAccountToResponse(&snapshot.Account),
		DrainTransferID: snapshot.DrainTransferID,
		DeletedAt:       snapshot.DeletedAt.Format(time.RFC3339),
	}
}

func mapCustomerSnapshotToResponse(snapshot *account.CustomerSnapshot) DeletedCustomerResponse {
	accounts := make([]AccountResponse, 0, len(snapshot.Accounts))
	for i := range snapshot.Accounts {
		accounts = append(accounts, mapAccountToResponse(&snapshot.Accounts[i]))
	}
	return DeletedCustomerResponse{
		Customer:  mapCustomerToResponse(&snapshot.Customer, nil),
		Accounts:  accounts,
		DeletedAt: snapshot.DeletedAt.Format(time.RFC3339),
	}
}

func mapTransferToResponse(record *transfer.Record) TransferResponse {
	return TransferResponse{
		ID:                 record.ID,
		Type:               record.Type.String(),
		SenderCustomerID:   record.SenderCustomerID,
		SenderAccountID:    record.SenderAccountID,
		ReceiverCustomerID: record.ReceiverCustomerID,
		ReceiverAccountID:  record.ReceiverAccountID,
		Amount:             record.Amount.StringFixed(transfer.MaxScale),
		Fee:                record.Fee.StringFixed(transfer.MaxScale),
		Committed:          record.Committed,
		CreatedAt:          record.CreatedAt.Format(time.RFC3339),
	}
}
