package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/transactionflow-billing/internal/domain/ledger"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/ledger_processor/service"
)

type EventValidatorImpl struct {
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewEventValidator(ledgerRepo ledger.Repository, logger *slog.Logger) service.EventValidator {
	return &EventValidatorImpl{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Validate rejects events that could not have come from a committed transfer
func (v *EventValidatorImpl) Validate(ctx context.Context, event *shared.TransferCommittedEvent) error {
	switch {
	case event.TransferID <= 0:
		return fmt.Errorf("%w: transfer id must be positive: %d", service.ErrInvalidEvent, event.TransferID)
	case !event.Type.Valid():
		return fmt.Errorf("%w: unknown transfer type %d", service.ErrInvalidEvent, event.Type)
	case event.SenderAccountID <= 0 || event.ReceiverAccountID <= 0:
		return fmt.Errorf("%w: sender and receiver accounts are required", service.ErrInvalidEvent)
	case event.Amount.IsNegative():
		return fmt.Errorf("%w: negative amount %s", service.ErrInvalidEvent, event.Amount)
	case event.Fee.IsNegative():
		return fmt.Errorf("%w: negative fee %s", service.ErrInvalidEvent, event.Fee)
	case event.CommittedAt.IsZero():
		return fmt.Errorf("%w: missing commit time", service.ErrInvalidEvent)
	}
	return nil
}

// CheckProjected reports whether the ledger already holds the transfer
func (v *EventValidatorImpl) CheckProjected(ctx context.Context, event *shared.TransferCommittedEvent) (bool, error) {
	logger := v.logger
	if event.CorrelationID != "" {
		logger = v.logger.With("correlation_id", event.CorrelationID)
	}

	existing, err := v.ledgerRepo.GetByTransferID(ctx, event.TransferID)
	if err != nil && !errors.Is(err, ledger.ErrEntryNotFound{}) {
		logger.Error("Failed to check ledger for existing entry", "transfer_id", event.TransferID, "error", err)
		return false, fmt.Errorf("ledger lookup failed for transfer %d: %w", event.TransferID, err)
	}

	if existing != nil {
		logger.Info("Transfer already projected", "transfer_id", event.TransferID, "projected_at", existing.ProjectedAt)
		return true, nil
	}

	return false, nil
}
