package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/transactionflow-billing/internal/domain/shared"
)

// Message stores an event in the same transaction as the state change it describes,
// so it is published if and only if that change committed
type Message struct {
	ID            int64               `json:"id"`
	AggregateID   int64               `json:"aggregate_id"`
	EventType     shared.EventType    `json:"event_type"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewTransferCommittedMessage wraps a committed transfer event
func NewTransferCommittedMessage(event *shared.TransferCommittedEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		AggregateID: event.TransferID,
		EventType:   shared.EventTypeTransferCommitted,
		Payload:     payload,
		Status:      shared.OutboxStatusPending,
		Attempts:    0,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// TransferEvent decodes the payload of a transfer.committed message
func (m *Message) TransferEvent() (*shared.TransferCommittedEvent, error) {
	if m.EventType != shared.EventTypeTransferCommitted {
		return nil, fmt.Errorf("unexpected event type %q", m.EventType)
	}
	var event shared.TransferCommittedEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
