package service

import (
	"context"
	"log/slog"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/account"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	lifecycle    billing.AccountLifecycle
	accountRepo  account.Repository
	customerRepo account.CustomerRepository
	logger       *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, lifecycle billing.AccountLifecycle, accountRepo account.Repository, customerRepo account.CustomerRepository) AccountService {
	return &AccountServiceImpl{
		lifecycle:    lifecycle,
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// CreateCustomer stores a customer together with its main account
func (s *AccountServiceImpl) CreateCustomer(ctx context.Context, name string, maxAllowedAccounts int) (*account.Customer, *account.Account, error) {
	return s.lifecycle.CreateCustomer(ctx, name, maxAllowedAccounts)
}

// CreateAccount opens a new account for an existing customer
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, customerID int64) (*account.Account, error) {
	return s.lifecycle.CreateAccount(ctx, customerID)
}

// GetAccount retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// ListCustomerAccounts checks that the customer exists before listing its accounts,
// so an unknown customer is told apart from one without accounts
func (s *AccountServiceImpl) ListCustomerAccounts(ctx context.Context, customerID int64) ([]*account.Account, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to list customer accounts", "customer_id", customerID, "error", err)
		return nil, err
	}
	return accounts, nil
}

func (s *AccountServiceImpl) DeactivateAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.lifecycle.Deactivate(ctx, id)
}

func (s *AccountServiceImpl) ActivateAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.lifecycle.Activate(ctx, id)
}

func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id int64) (*account.Snapshot, error) {
	return s.lifecycle.Delete(ctx, id)
}

func (s *AccountServiceImpl) RotateMainAccount(ctx context.Context, customerID int64) (*account.Account, error) {
	return s.lifecycle.RotateMain(ctx, customerID)
}

func (s *AccountServiceImpl) DeleteCustomer(ctx context.Context, customerID int64) (*account.CustomerSnapshot, error) {
	return s.lifecycle.DeleteCustomer(ctx, customerID)
}
