package transfer

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transactionflow-billing/internal/domain/shared"
)

// Common errors
var (
	ErrSenderIsReceiver      = errors.New("cannot complete operation, sender and receiver accounts cannot be the same")
	ErrTransferFailed        = errors.New("failed to transfer the given amount")
	ErrTransactionNotCreated = errors.New("an error occurred while creating the transaction")
	ErrInvalidAmount         = errors.New("amount must be positive and fee must not be negative")
	ErrTooManyDecimalPlaces  = errors.New("amounts support at most two decimal places")
	ErrAmountOutOfRange      = errors.New("amount plus fee exceeds the largest storable balance")
)

// MaxScale is the number of fractional digits a stored amount may carry
const MaxScale = 2

// MaxAmount bounds amount plus fee; NUMERIC(20,2) columns hold values below 10^18
var MaxAmount = decimal.New(1, 18).Sub(decimal.New(1, -MaxScale))

// Participants are the resolved sides of a transfer
type Participants struct {
	SenderCustomerID   int64 `json:"sender_customer_id"`
	SenderAccountID    int64 `json:"sender_account_id"`
	ReceiverCustomerID int64 `json:"receiver_customer_id"`
	ReceiverAccountID  int64 `json:"receiver_account_id"`
}

// Record is one ledger row describing a balance movement
type Record struct {
	ID                 int64               `json:"id"`
	SenderCustomerID   int64               `json:"sender_customer_id"`
	SenderAccountID    int64               `json:"sender_account_id"`
	ReceiverCustomerID int64               `json:"receiver_customer_id"`
	ReceiverAccountID  int64               `json:"receiver_account_id"`
	Amount             decimal.Decimal     `json:"amount"`
	Fee                decimal.Decimal     `json:"fee"`
	Type               shared.TransferType `json:"type"`
	Committed          bool                `json:"committed"`
	CreatedAt          time.Time           `json:"created_at"`
}

// NewRecord builds a pending ledger record for p after validating amounts.
// External transfers need a positive amount; drains may move zero.
func NewRecord(p Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*Record, error) {
	if !typ.Valid() {
		return nil, shared.ErrIncorrectFormat
	}
	if err := ValidateAmounts(amount, fee, typ); err != nil {
		return nil, err
	}
	if p.SenderAccountID == p.ReceiverAccountID {
		return nil, ErrSenderIsReceiver
	}

	return &Record{
		SenderCustomerID:   p.SenderCustomerID,
		SenderAccountID:    p.SenderAccountID,
		ReceiverCustomerID: p.ReceiverCustomerID,
		ReceiverAccountID:  p.ReceiverAccountID,
		Amount:             amount,
		Fee:                fee,
		Type:               typ,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

// ValidateAmounts checks sign, precision and range of a transfer amount and fee
func ValidateAmounts(amount, fee decimal.Decimal, typ shared.TransferType) error {
	if fee.IsNegative() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	if typ == shared.TransferTypeExternal && !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -MaxScale && !amount.Equal(amount.Truncate(MaxScale)) {
		return ErrTooManyDecimalPlaces
	}
	if fee.Exponent() < -MaxScale && !fee.Equal(fee.Truncate(MaxScale)) {
		return ErrTooManyDecimalPlaces
	}
	if amount.Add(fee).GreaterThan(MaxAmount) {
		return ErrAmountOutOfRange
	}
	return nil
}

// Total is the amount debited from the sender
func (r *Record) Total() decimal.Decimal {
	return r.Amount.Add(r.Fee)
}

// Event converts a committed record into the event published downstream
func (r *Record) Event(correlationID string, committedAt time.Time) *shared.TransferCommittedEvent {
	return &shared.TransferCommittedEvent{
		TransferID:         r.ID,
		SenderCustomerID:   r.SenderCustomerID,
		SenderAccountID:    r.SenderAccountID,
		ReceiverCustomerID: r.ReceiverCustomerID,
		ReceiverAccountID:  r.ReceiverAccountID,
		Amount:             r.Amount,
		Fee:                r.Fee,
		Type:               r.Type,
		CorrelationID:      correlationID,
		CommittedAt:        committedAt,
	}
}
