package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

// TransferServiceImpl implements the TransferService interface
type TransferServiceImpl struct {
	resolver     billing.TransferResolver
	executor     billing.TransferExecutor
	transferRepo transfer.Repository
	logger       *slog.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(logger *slog.Logger, resolver billing.TransferResolver, executor billing.TransferExecutor, transferRepo transfer.Repository) TransferService {
	return &TransferServiceImpl{
		resolver:     resolver,
		executor:     executor,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// TransferMoney resolves the participants and executes an external transfer between them
func (s *TransferServiceImpl) TransferMoney(ctx context.Context, mode transfer.Mode, senderRef, receiverRef int64, amount, fee decimal.Decimal) (*transfer.Record, error) {
	participants, err := s.resolver.Resolve(ctx, mode, senderRef, receiverRef)
	if err != nil {
		s.logger.Warn("Failed to resolve transfer participants",
			"mode", mode.String(),
			"sender_ref", senderRef,
			"receiver_ref", receiverRef,
			"error", err,
		)
		return nil, err
	}

	record, err := s.executor.Execute(ctx, *participants, amount, fee, shared.TransferTypeExternal)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfer committed",
		"transfer_id", record.ID,
		"mode", mode.String(),
		"sender_account_id", record.SenderAccountID,
		"receiver_account_id", record.ReceiverAccountID,
		"amount", record.Amount.String(),
		"fee", record.Fee.String(),
	)
	return record, nil
}

// GetTransfer retrieves a transfer record by its ID, returns ErrRecordNotFound if not found
func (s *TransferServiceImpl) GetTransfer(ctx context.Context, id int64) (*transfer.Record, error) {
	return s.transferRepo.GetByID(ctx, id)
}
