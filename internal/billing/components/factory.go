package components

import (
	"log/slog"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/config"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/idempotency"
	"github.com/transactionflow-billing/internal/domain/outbox"
	"github.com/transactionflow-billing/internal/domain/transfer"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

// Repositories groups the stores the engine runs on
type Repositories struct {
	Accounts    account.Repository
	Customers   account.CustomerRepository
	Transfers   transfer.Repository
	Outbox      outbox.Repository
	Idempotency idempotency.Repository
	Archive     account.Archiver
}

// Engine bundles the wired billing components
type Engine struct {
	Resolver  billing.TransferResolver
	Executor  billing.TransferExecutor
	Lifecycle billing.AccountLifecycle
	Guard     billing.IdempotencyGuard
	Keys      billing.KeyIssuer
}

// CreateEngine creates the billing components with all their dependencies.
func CreateEngine(
	txManager persistence.TxManager,
	repos Repositories,
	cfg *config.Config,
	logger *slog.Logger,
) *Engine {
	executor := NewTransferExecutor(
		txManager,
		repos.Accounts,
		repos.Transfers,
		repos.Outbox,
		logger.With("component", "transfer_executor"),
	)

	lifecycle := NewAccountLifecycle(
		txManager,
		repos.Accounts,
		repos.Customers,
		executor,
		repos.Archive,
		cfg.Accounts,
		logger.With("component", "account_lifecycle"),
	)

	locks := NewKeyLockTable(cfg.Idempotency.LockShards)

	logger.Info("Created billing engine",
		"lock_shards", cfg.Idempotency.LockShards,
		"key_block_size", cfg.Idempotency.KeyBlockSize,
	)

	return &Engine{
		Resolver:  NewTransferResolver(repos.Accounts, logger.With("component", "transfer_resolver")),
		Executor:  executor,
		Lifecycle: lifecycle,
		Guard:     NewIdempotencyGuard(repos.Idempotency, locks, logger.With("component", "idempotency_guard")),
		Keys:      NewKeyBlockManager(repos.Idempotency, cfg.Idempotency.KeyBlockSize, logger.With("component", "key_issuer")),
	}
}
