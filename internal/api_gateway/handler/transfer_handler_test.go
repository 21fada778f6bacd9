package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) TransferMoney(ctx context.Context, mode transfer.Mode, senderRef, receiverRef int64, amount, fee decimal.Decimal) (*transfer.Record, error) {
	args := m.Called(ctx, mode, senderRef, receiverRef, amount, fee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Record), args.Error(1)
}

func (m *MockTransferService) GetTransfer(ctx context.Context, id int64) (*transfer.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Record), args.Error(1)
}

func decimalEq(want string) interface{} {
	d := decimal.RequireFromString(want)
	return mock.MatchedBy(func(v decimal.Decimal) bool { return v.Equal(d) })
}

func committedRecord(id int64) *transfer.Record {
	return &transfer.Record{
		ID:                 id,
		SenderCustomerID:   1,
		SenderAccountID:    10,
		ReceiverCustomerID: 2,
		ReceiverAccountID:  20,
		Amount:             decimal.RequireFromString("40"),
		Fee:                decimal.RequireFromString("1.5"),
		Type:               shared.TransferTypeExternal,
		Committed:          true,
		CreatedAt:          time.Now(),
	}
}

func TestTransferHandler_Create(t *testing.T) {
	logger := newTestLogger()

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockTransferService)
		expectedStatus int
	}{
		{
			name: "Success with mode name and string amounts",
			body: `{"mode":"CtoC","sender_ref":1,"receiver_ref":2,"amount":"40","fee":"1.5"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeCtoC, int64(1), int64(2), decimalEq("40"), decimalEq("1.5")).
					Return(committedRecord(5), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Success with mode ordinal and numeric amounts",
			body: `{"mode":"2","sender_ref":1,"receiver_ref":20,"amount":40,"fee":0}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeCtoA, int64(1), int64(20), decimalEq("40"), decimalEq("0")).
					Return(committedRecord(6), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Unknown mode name",
			body:           `{"mode":"XtoY","sender_ref":1,"receiver_ref":2,"amount":"1"}`,
			setupMock:      func(m *MockTransferService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Mode ordinal out of range",
			body:           `{"mode":"9","sender_ref":1,"receiver_ref":2,"amount":"1"}`,
			setupMock:      func(m *MockTransferService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing sender",
			body:           `{"mode":"AtoA","receiver_ref":2,"amount":"1"}`,
			setupMock:      func(m *MockTransferService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Self transfer",
			body: `{"mode":"AtoA","sender_ref":10,"receiver_ref":10,"amount":"1"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeAtoA, int64(10), int64(10), mock.Anything, mock.Anything).
					Return(nil, transfer.ErrSenderIsReceiver)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Too many decimals",
			body: `{"mode":"AtoA","sender_ref":10,"receiver_ref":20,"amount":"1.001"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeAtoA, int64(10), int64(20), mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, transfer.ErrTooManyDecimalPlaces))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Amount beyond storable range",
			body: `{"mode":"AtoA","sender_ref":10,"receiver_ref":20,"amount":"1000000000000000000"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeAtoA, int64(10), int64(20), mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, transfer.ErrAmountOutOfRange))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Insufficient funds",
			body: `{"mode":"AtoA","sender_ref":10,"receiver_ref":20,"amount":"1000"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeAtoA, int64(10), int64(20), mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, account.ErrInsufficientFunds))
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "Receiver customer has no main account",
			body: `{"mode":"AtoC","sender_ref":10,"receiver_ref":3,"amount":"1"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeAtoC, int64(10), int64(3), mock.Anything, mock.Anything).
					Return(nil, account.ErrAccountNotFound{CustomerID: 3})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Storage failure",
			body: `{"mode":"AtoA","sender_ref":10,"receiver_ref":20,"amount":"1"}`,
			setupMock: func(m *MockTransferService) {
				m.On("TransferMoney", mock.Anything, transfer.ModeAtoA, int64(10), int64(20), mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, shared.ErrOperationFailed))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTransferService)
			tt.setupMock(mockService)
			handler := NewTransferHandler(logger, mockService)

			router := setupTestRouter()
			router.POST("/transfers", handler.Create)

			req, _ := http.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTransferHandler_CreateResponseBody(t *testing.T) {
	mockService := new(MockTransferService)
	handler := NewTransferHandler(newTestLogger(), mockService)
	mockService.On("TransferMoney", mock.Anything, transfer.ModeCtoC, int64(1), int64(2), mock.Anything, mock.Anything).
		Return(committedRecord(5), nil)

	router := setupTestRouter()
	router.POST("/transfers", handler.Create)

	req, _ := http.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(`{"mode":"CtoC","sender_ref":1,"receiver_ref":2,"amount":"40","fee":"1.5"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var data TransferResponse
	decodeResponse(t, rr, &data)
	assert.Equal(t, int64(5), data.ID)
	assert.Equal(t, "EXTERNAL", data.Type)
	assert.Equal(t, "40.00", data.Amount)
	assert.Equal(t, "1.50", data.Fee)
	assert.True(t, data.Committed)
}

func TestTransferHandler_GetByID(t *testing.T) {
	mockService := new(MockTransferService)
	handler := NewTransferHandler(newTestLogger(), mockService)
	mockService.On("GetTransfer", mock.Anything, int64(5)).Return(committedRecord(5), nil)
	mockService.On("GetTransfer", mock.Anything, int64(6)).Return(nil, transfer.ErrRecordNotFound{ID: 6})

	router := setupTestRouter()
	router.GET("/transfers/:id", handler.GetByID)

	for path, status := range map[string]int{
		"/transfers/5":   http.StatusOK,
		"/transfers/6":   http.StatusNotFound,
		"/transfers/abc": http.StatusBadRequest,
	} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, status, rr.Code, path)
	}
}
