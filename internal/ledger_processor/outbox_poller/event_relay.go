package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/transactionflow-billing/internal/domain/outbox"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/platform/messaging/producers"
)

// EventRelay moves one outbox message onto the event bus
type EventRelay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// ErrUndecodablePayload marks outbox rows that can never be published
type ErrUndecodablePayload struct {
	OutboxID int64
	Err      error
}

func (e ErrUndecodablePayload) Error() string {
	return fmt.Sprintf("outbox message %d has an undecodable payload: %v", e.OutboxID, e.Err)
}

func (e ErrUndecodablePayload) Unwrap() error { return e.Err }

type KafkaEventRelay struct {
	outboxRepo outbox.Repository
	publisher  producers.EventPublisher
	logger     *slog.Logger
}

func NewKafkaEventRelay(
	outboxRepo outbox.Repository,
	publisher producers.EventPublisher,
	logger *slog.Logger,
) EventRelay {
	return &KafkaEventRelay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Relay publishes the message keyed by its aggregate id and marks it PROCESSED.
// A crash between the two steps republishes the event; consumers dedupe on transfer id.
func (r *KafkaEventRelay) Relay(ctx context.Context, message *outbox.Message) error {
	event, err := message.TransferEvent()
	if err != nil {
		r.logger.Error("Failed to decode outbox payload",
			"outbox_id", message.ID, "aggregate_id", message.AggregateID, "error", err,
		)
		if updateErr := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			r.logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH", "outbox_id", message.ID, "update_error", updateErr)
		}
		return ErrUndecodablePayload{OutboxID: message.ID, Err: err}
	}

	logger := r.logger
	if event.CorrelationID != "" {
		logger = r.logger.With("correlation_id", event.CorrelationID)
	}

	key := strconv.FormatInt(message.AggregateID, 10)
	if err := r.publisher.Publish(ctx, key, message.EventType, message.Payload); err != nil {
		return fmt.Errorf("failed to publish outbox message %d: %w", message.ID, err)
	}

	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to mark outbox message PROCESSED",
			"outbox_id", message.ID, "transfer_id", event.TransferID, "error", err,
		)
		return fmt.Errorf("published outbox message %d but failed to mark it PROCESSED: %w", message.ID, err)
	}

	logger.Info("Outbox message published", "outbox_id", message.ID, "transfer_id", event.TransferID)
	return nil
}
