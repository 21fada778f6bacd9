package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/outbox"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

// TransferExecutorImpl implements the TransferExecutor interface
type TransferExecutorImpl struct {
	txManager    persistence.TxManager
	accountRepo  account.Repository
	transferRepo transfer.Repository
	outboxRepo   outbox.Repository
	logger       *slog.Logger
}

// NewTransferExecutor creates a new TransferExecutorImpl
func NewTransferExecutor(
	txManager persistence.TxManager,
	accountRepo account.Repository,
	transferRepo transfer.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) billing.TransferExecutor {
	return &TransferExecutorImpl{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// Execute runs the transfer in a transaction of its own
func (e *TransferExecutorImpl) Execute(ctx context.Context, p transfer.Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*transfer.Record, error) {
	logger := e.loggerFor(ctx)
	start := time.Now()

	var record *transfer.Record
	err := e.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var err error
		record, err = e.ExecuteInTx(ctx, tx, p, amount, fee, typ)
		return err
	})
	if err != nil {
		logger.Warn("Transfer failed",
			"sender_account_id", p.SenderAccountID,
			"receiver_account_id", p.ReceiverAccountID,
			"amount", amount.String(),
			"elapsed", time.Since(start),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", transfer.ErrTransferFailed, err)
	}

	logger.Info("Transfer committed",
		"transfer_id", record.ID,
		"sender_account_id", record.SenderAccountID,
		"receiver_account_id", record.ReceiverAccountID,
		"amount", record.Amount.String(),
		"fee", record.Fee.String(),
		"elapsed", time.Since(start),
	)
	return record, nil
}

// ExecuteInTx records and applies the movement on tx. The caller commits or rolls back.
func (e *TransferExecutorImpl) ExecuteInTx(ctx context.Context, tx pgx.Tx, p transfer.Participants, amount, fee decimal.Decimal, typ shared.TransferType) (*transfer.Record, error) {
	logger := e.loggerFor(ctx)

	record, err := transfer.NewRecord(p, amount, fee, typ)
	if err != nil {
		return nil, err
	}

	if err := e.transferRepo.WithTx(tx).Create(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", transfer.ErrTransactionNotCreated, err)
	}

	accounts := e.accountRepo.WithTx(tx)
	sender, receiver, err := lockPair(ctx, accounts, p.SenderAccountID, p.ReceiverAccountID)
	if err != nil {
		return nil, err
	}

	if err := sender.Debit(record.Total()); err != nil {
		logger.Warn("Sender cannot cover transfer",
			"transfer_id", record.ID,
			"sender_account_id", sender.ID,
			"balance", sender.Balance.String(),
			"total", record.Total().String(),
		)
		return nil, err
	}
	if err := receiver.Credit(record.Amount); err != nil {
		return nil, err
	}

	if err := accounts.UpdateBalance(ctx, sender.ID, sender.Balance, sender.LastUpdated); err != nil {
		return nil, classifyStoreError(err)
	}
	if err := accounts.UpdateBalance(ctx, receiver.ID, receiver.Balance, receiver.LastUpdated); err != nil {
		return nil, classifyStoreError(err)
	}

	if err := e.transferRepo.WithTx(tx).MarkCommitted(ctx, record.ID); err != nil {
		return nil, classifyStoreError(err)
	}
	record.Committed = true

	msg, err := outbox.NewTransferCommittedMessage(record.Event(shared.CorrelationIDFromContext(ctx), time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer event: %w", err)
	}
	if err := e.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
		return nil, classifyStoreError(err)
	}

	logger.Debug("Transfer applied",
		"transfer_id", record.ID,
		"type", record.Type.String(),
		"sender_balance", sender.Balance.String(),
		"receiver_balance", receiver.Balance.String(),
	)
	return record, nil
}

func (e *TransferExecutorImpl) loggerFor(ctx context.Context) *slog.Logger {
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		return e.logger.With("correlation_id", correlationID)
	}
	return e.logger
}

// lockPair locks both accounts in ascending id order and returns them as sender, receiver
func lockPair(ctx context.Context, repo account.Repository, senderID, receiverID int64) (*account.Account, *account.Account, error) {
	firstID, secondID := senderID, receiverID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := repo.LockForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}
	second, err := repo.LockForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}

	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}
