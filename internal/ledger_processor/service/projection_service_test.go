package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/transactionflow-billing/internal/domain/ledger"
)

func TestProjectionService_Project(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		setupMocks    func(v *MockEventValidator, r *MockLedgerRepo)
		expectedError error
		expectCreate  bool
	}{
		{
			name: "projects new transfer",
			setupMocks: func(v *MockEventValidator, r *MockLedgerRepo) {
				v.On("Validate", ctx, mock.Anything).Return(nil)
				v.On("CheckProjected", ctx, mock.Anything).Return(false, nil)
				r.On("Create", ctx, mock.MatchedBy(func(e *ledger.Entry) bool {
					return e.TransferID == 42 && e.Amount.String() == "40" && e.Fee.String() == "1.5" && e.CorrelationID == "corr-1"
				})).Return(nil)
			},
			expectCreate: true,
		},
		{
			name: "invalid event is not written",
			setupMocks: func(v *MockEventValidator, r *MockLedgerRepo) {
				v.On("Validate", ctx, mock.Anything).Return(fmt.Errorf("%w: unknown transfer type", ErrInvalidEvent))
			},
			expectedError: ErrInvalidEvent,
		},
		{
			name: "already projected transfer is skipped",
			setupMocks: func(v *MockEventValidator, r *MockLedgerRepo) {
				v.On("Validate", ctx, mock.Anything).Return(nil)
				v.On("CheckProjected", ctx, mock.Anything).Return(true, nil)
			},
		},
		{
			name: "lookup failure is returned for redelivery",
			setupMocks: func(v *MockEventValidator, r *MockLedgerRepo) {
				v.On("Validate", ctx, mock.Anything).Return(nil)
				v.On("CheckProjected", ctx, mock.Anything).Return(false, errors.New("mongo down"))
			},
			expectedError: errors.New("mongo down"),
		},
		{
			name: "duplicate insert counts as success",
			setupMocks: func(v *MockEventValidator, r *MockLedgerRepo) {
				v.On("Validate", ctx, mock.Anything).Return(nil)
				v.On("CheckProjected", ctx, mock.Anything).Return(false, nil)
				r.On("Create", ctx, mock.Anything).Return(ledger.ErrDuplicateEntry{TransferID: 42})
			},
			expectCreate: true,
		},
		{
			name: "write failure is returned",
			setupMocks: func(v *MockEventValidator, r *MockLedgerRepo) {
				v.On("Validate", ctx, mock.Anything).Return(nil)
				v.On("CheckProjected", ctx, mock.Anything).Return(false, nil)
				r.On("Create", ctx, mock.Anything).Return(errors.New("write concern timeout"))
			},
			expectedError: errors.New("failed to project transfer 42: write concern timeout"),
			expectCreate:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := new(MockEventValidator)
			repo := new(MockLedgerRepo)
			tt.setupMocks(validator, repo)

			svc := NewProjectionService(validator, repo, newTestLogger())
			err := svc.Project(ctx, testEvent(42))

			switch {
			case tt.expectedError == nil:
				assert.NoError(t, err)
			case errors.Is(tt.expectedError, ErrInvalidEvent):
				assert.ErrorIs(t, err, ErrInvalidEvent)
			default:
				assert.EqualError(t, err, tt.expectedError.Error())
			}

			validator.AssertExpectations(t)
			repo.AssertExpectations(t)
			if !tt.expectCreate {
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}
