package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockAccountLifecycle struct {
	mock.Mock
}

func (m *MockAccountLifecycle) CreateCustomer(ctx context.Context, name string, maxAllowedAccounts int) (*account.Customer, *account.Account, error) {
	args := m.Called(ctx, name, maxAllowedAccounts)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.Customer), args.Get(1).(*account.Account), args.Error(2)
}

func (m *MockAccountLifecycle) CreateAccount(ctx context.Context, customerID int64) (*account.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountLifecycle) Deactivate(ctx context.Context, accountID int64) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountLifecycle) Activate(ctx context.Context, accountID int64) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountLifecycle) Delete(ctx context.Context, accountID int64) (*account.Snapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Snapshot), args.Error(1)
}

func (m *MockAccountLifecycle) RotateMain(ctx context.Context, customerID int64) (*account.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountLifecycle) DeleteCustomer(ctx context.Context, customerID int64) (*account.CustomerSnapshot, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.CustomerSnapshot), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) LockByCustomerID(ctx context.Context, customerID int64) ([]*account.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal, lastUpdated time.Time) error {
	args := m.Called(ctx, id, balance, lastUpdated)
	return args.Error(0)
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockAccountRepository) SetMain(ctx context.Context, id int64, main bool) error {
	args := m.Called(ctx, id, main)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return m
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *account.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id int64) (*account.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Customer), args.Error(1)
}

func (m *MockCustomerRepository) LockForUpdate(ctx context.Context, id int64) (*account.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) WithTx(tx pgx.Tx) account.CustomerRepository {
	return m
}

type MockTransferResolver struct {
	mock.Mock
}

func (m *MockTransferResolver) Resolve(ctx context.Context, mode transfer.Mode, senderRef, receiverRef int64) (*transfer.Participants, error) {
	args := m.Called(ctx, mode, senderRef, receiverRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Participants), args.Error(1)
}

type MockTransferExecutor struct {
	mock.Mock
}

func (m *MockTransferExecutor) Execute(ctx context.Context, p transfer.Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*transfer.Record, error) {
	args := m.Called(ctx, p, amount, fee, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Record), args.Error(1)
}

func (m *MockTransferExecutor) ExecuteInTx(ctx context.Context, tx pgx.Tx, p transfer.Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*transfer.Record, error) {
	args := m.Called(ctx, tx, p, amount, fee, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Record), args.Error(1)
}

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, record *transfer.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTransferRepository) MarkCommitted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id int64) (*transfer.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Record), args.Error(1)
}

func (m *MockTransferRepository) WithTx(tx pgx.Tx) transfer.Repository {
	return m
}

type MockKeyIssuer struct {
	mock.Mock
}

func (m *MockKeyIssuer) NextKey(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
