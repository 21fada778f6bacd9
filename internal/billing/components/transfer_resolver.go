package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

// TransferResolverImpl implements the TransferResolver interface
type TransferResolverImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

// NewTransferResolver creates a new TransferResolverImpl
func NewTransferResolver(accountRepo account.Repository, logger *slog.Logger) billing.TransferResolver {
	return &TransferResolverImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Resolve looks up both sides of a transfer concurrently and rejects self transfers.
// Customer references resolve to the customer's active main account.
func (r *TransferResolverImpl) Resolve(ctx context.Context, mode transfer.Mode, senderRef, receiverRef int64) (*transfer.Participants, error) {
	senderKind, receiverKind, err := mode.Route()
	if err != nil {
		return nil, err
	}

	logger := r.logger
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		logger = r.logger.With("correlation_id", correlationID)
	}

	var sender, receiver *account.Account
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc, err := r.lookup(gctx, senderKind, senderRef)
		sender = acc
		return err
	})
	g.Go(func() error {
		acc, err := r.lookup(gctx, receiverKind, receiverRef)
		receiver = acc
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn("Failed to resolve transfer participants",
			"mode", mode.String(),
			"sender_ref", senderRef,
			"receiver_ref", receiverRef,
			"error", err,
		)
		return nil, err
	}

	if sender.ID == receiver.ID {
		return nil, transfer.ErrSenderIsReceiver
	}
	if mode == transfer.ModeCtoC && sender.CustomerID == receiver.CustomerID {
		return nil, transfer.ErrSenderIsReceiver
	}

	logger.Debug("Resolved transfer participants",
		"mode", mode.String(),
		"sender_account_id", sender.ID,
		"receiver_account_id", receiver.ID,
	)

	return &transfer.Participants{
		SenderCustomerID:   sender.CustomerID,
		SenderAccountID:    sender.ID,
		ReceiverCustomerID: receiver.CustomerID,
		ReceiverAccountID:  receiver.ID,
	}, nil
}

func (r *TransferResolverImpl) lookup(ctx context.Context, kind transfer.RefKind, ref int64) (*account.Account, error) {
	if kind == transfer.RefAccount {
		acc, err := r.accountRepo.GetByID(ctx, ref)
		if err != nil {
			return nil, classifyStoreError(err)
		}
		return acc, nil
	}

	accounts, err := r.accountRepo.GetByCustomerID(ctx, ref)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if len(accounts) == 0 {
		return nil, account.ErrAccountsNotFound{CustomerID: ref}
	}

	mainAcc := account.FindMain(accounts)
	if mainAcc == nil {
		return nil, account.ErrAccountNotFound{CustomerID: ref}
	}
	return mainAcc, nil
}

// classifyStoreError passes domain errors through and tags everything else as a
// transient storage failure
func classifyStoreError(err error) error {
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}),
		errors.Is(err, account.ErrAccountsNotFound{}),
		errors.Is(err, shared.ErrOperationFailed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, account.ErrCustomerNotFound{}):
		return fmt.Errorf("%w: %w", shared.ErrObjectNotFound, err)
	default:
		return fmt.Errorf("%w: %w", shared.ErrOperationFailed, err)
	}
}
