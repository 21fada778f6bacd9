package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferCommittedEvent is published to Kafka for every committed ledger record
type TransferCommittedEvent struct {
	TransferID         int64           `json:"transfer_id"`
	SenderCustomerID   int64           `json:"sender_customer_id"`
	SenderAccountID    int64           `json:"sender_account_id"`
	ReceiverCustomerID int64           `json:"receiver_customer_id"`
	ReceiverAccountID  int64           `json:"receiver_account_id"`
	Amount             decimal.Decimal `json:"amount"`
	Fee                decimal.Decimal `json:"fee"`
	Type               TransferType    `json:"type"`
	CorrelationID      string          `json:"correlation_id,omitempty"`
	CommittedAt        time.Time       `json:"committed_at"`
}
