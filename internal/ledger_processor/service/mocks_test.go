package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/transactionflow-billing/internal/domain/ledger"
	"github.com/transactionflow-billing/internal/domain/shared"
)

type MockEventValidator struct {
	mock.Mock
}

func (m *MockEventValidator) Validate(ctx context.Context, event *shared.TransferCommittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventValidator) CheckProjected(ctx context.Context, event *shared.TransferCommittedEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLedgerRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByTransferID(ctx context.Context, transferID int64) (*ledger.Entry, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

// MockProjectionService mocks the ProjectionService interface
type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) Project(ctx context.Context, event *shared.TransferCommittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent(id int64) *shared.TransferCommittedEvent {
	return &shared.TransferCommittedEvent{
		TransferID:         id,
		SenderCustomerID:   1,
		SenderAccountID:    10,
		ReceiverCustomerID: 2,
		ReceiverAccountID:  20,
		Amount:             decimal.RequireFromString("40"),
		Fee:                decimal.RequireFromString("1.5"),
		Type:               shared.TransferTypeExternal,
		CorrelationID:      "corr-1",
		CommittedAt:        time.Now().UTC(),
	}
}
