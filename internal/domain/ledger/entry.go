package ledger

import (
	"fmt"
	"time"

	"github.com/transactionflow-billing/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is the read-side copy of a committed transfer kept in the ledger mirror
type Entry struct {
	TransferID         int64                `json:"transfer_id" bson:"transfer_id"`
	SenderCustomerID   int64                `json:"sender_customer_id" bson:"sender_customer_id"`
	SenderAccountID    int64                `json:"sender_account_id" bson:"sender_account_id"`
	ReceiverCustomerID int64                `json:"receiver_customer_id" bson:"receiver_customer_id"`
	ReceiverAccountID  int64                `json:"receiver_account_id" bson:"receiver_account_id"`
	Amount             primitive.Decimal128 `json:"amount" bson:"amount"`
	Fee                primitive.Decimal128 `json:"fee" bson:"fee"`
	Type               shared.TransferType  `json:"type" bson:"type"`
	CorrelationID      string               `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CommittedAt        time.Time            `json:"committed_at" bson:"committed_at"`
	ProjectedAt        time.Time            `json:"projected_at" bson:"projected_at"`
}

// NewEntry converts a committed transfer event into a ledger mirror entry
func NewEntry(event *shared.TransferCommittedEvent) (*Entry, error) {
	amount, err := primitive.ParseDecimal128(event.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("failed to convert amount %s: %w", event.Amount, err)
	}
	fee, err := primitive.ParseDecimal128(event.Fee.String())
	if err != nil {
		return nil, fmt.Errorf("failed to convert fee %s: %w", event.Fee, err)
	}

	return &Entry{
		TransferID:         event.TransferID,
		SenderCustomerID:   event.SenderCustomerID,
		SenderAccountID:    event.SenderAccountID,
		ReceiverCustomerID: event.ReceiverCustomerID,
		ReceiverAccountID:  event.ReceiverAccountID,
		Amount:             amount,
		Fee:                fee,
		Type:               event.Type,
		CorrelationID:      event.CorrelationID,
		CommittedAt:        event.CommittedAt,
		ProjectedAt:        time.Now().UTC(),
	}, nil
}
