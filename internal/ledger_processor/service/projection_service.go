package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/transactionflow-billing/internal/domain/ledger"
	"github.com/transactionflow-billing/internal/domain/shared"
)

type ProjectionServiceImpl struct {
	validator  EventValidator
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

func NewProjectionService(
	validator EventValidator,
	ledgerRepo ledger.Repository,
	logger *slog.Logger,
) ProjectionService {
	return &ProjectionServiceImpl{
		validator:  validator,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Project writes one ledger entry per transfer. Redelivered events are
// acknowledged without a second write.
func (s *ProjectionServiceImpl) Project(ctx context.Context, event *shared.TransferCommittedEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Projecting transfer", "transfer_id", event.TransferID, "type", event.Type.String())

	// 1. Validate the event
	if err := s.validator.Validate(ctx, event); err != nil {
		logger.Error("Transfer event validation failed", "transfer_id", event.TransferID, "error", err)
		return err
	}

	// 2. Skip transfers that are already mirrored
	projected, err := s.validator.CheckProjected(ctx, event)
	if err != nil {
		return err
	}
	if projected {
		return nil
	}

	// 3. Write the entry
	entry, err := ledger.NewEntry(event)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, ledger.ErrDuplicateEntry{}) {
			logger.Info("Ledger entry written concurrently, skipping", "transfer_id", event.TransferID)
			return nil
		}
		logger.Error("Failed to create ledger entry", "transfer_id", event.TransferID, "error", err)
		return fmt.Errorf("failed to project transfer %d: %w", event.TransferID, err)
	}

	logger.Info("Transfer projected into ledger", "transfer_id", event.TransferID)
	return nil
}
