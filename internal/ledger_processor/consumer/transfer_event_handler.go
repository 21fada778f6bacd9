package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/ledger_processor/service"
	"github.com/transactionflow-billing/internal/platform/messaging/producers"
)

// TransferEventHandler handles committed transfer events from Kafka
type TransferEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewTransferEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *TransferEventHandler {
	return &TransferEventHandler{
		projectionService: projectionService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage projects one event. A nil return commits the offset, so poison
// messages are committed only once they are parked in the DLQ.
func (h *TransferEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.TransferCommittedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal transfer event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.deadLetter(ctx, key, value, fmt.Errorf("failed to unmarshal transfer event: %w", err))
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received transfer event",
		"transfer_id", event.TransferID,
		"type", event.Type.String(),
		"amount", event.Amount.String(),
	)

	if err := h.projectionService.Project(ctx, &event); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			return h.deadLetter(ctx, key, value, err)
		}
		logger.Error("Failed to project transfer event", "transfer_id", event.TransferID, "error", err)
		return fmt.Errorf("projecting transfer %d failed: %w", event.TransferID, err)
	}

	return nil
}

func (h *TransferEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	if h.producer == nil {
		return cause
	}

	reason := cause.Error()
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(key),
		)
		return cause
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}
