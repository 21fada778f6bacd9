package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/config"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

// AccountLifecycleImpl implements the AccountLifecycle interface. Each transition runs
// in one transaction holding the customer row lock and then the customer's account
// rows in ascending id order.
type AccountLifecycleImpl struct {
	txManager    persistence.TxManager
	accountRepo  account.Repository
	customerRepo account.CustomerRepository
	executor     billing.TransferExecutor
	archiver     account.Archiver
	cfg          config.AccountsConfig
	logger       *slog.Logger
}

// NewAccountLifecycle creates a new AccountLifecycleImpl
func NewAccountLifecycle(
	txManager persistence.TxManager,
	accountRepo account.Repository,
	customerRepo account.CustomerRepository,
	executor billing.TransferExecutor,
	archiver account.Archiver,
	cfg config.AccountsConfig,
	logger *slog.Logger,
) billing.AccountLifecycle {
	return &AccountLifecycleImpl{
		txManager:    txManager,
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		executor:     executor,
		archiver:     archiver,
		cfg:          cfg,
		logger:       logger,
	}
}

// CreateCustomer stores a customer together with its first, main account
func (l *AccountLifecycleImpl) CreateCustomer(ctx context.Context, name string, maxAllowedAccounts int) (*account.Customer, *account.Account, error) {
	if maxAllowedAccounts <= 0 {
		maxAllowedAccounts = l.cfg.DefaultMaxAllowed
	}

	customer, err := account.NewCustomer(name, maxAllowedAccounts)
	if err != nil {
		return nil, nil, err
	}
	acc, err := account.NewAccount(0, l.cfg.InitialBalance, true)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	err = l.run(ctx, "create customer", func(tx pgx.Tx) error {
		if err := l.customerRepo.WithTx(tx).Create(ctx, customer); err != nil {
			return classifyStoreError(err)
		}
		acc.CustomerID = customer.ID
		if err := l.accountRepo.WithTx(tx).Create(ctx, acc); err != nil {
			return classifyStoreError(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	l.logger.Info("Customer created", "customer_id", customer.ID, "main_account_id", acc.ID)
	return customer, acc, nil
}

// CreateAccount opens a new active account for the customer. The first active
// account of a customer becomes its main account.
func (l *AccountLifecycleImpl) CreateAccount(ctx context.Context, customerID int64) (*account.Account, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var created *account.Account
	err := l.run(ctx, "create account", func(tx pgx.Tx) error {
		customer, family, err := l.lockCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}

		if account.CountActive(family) >= customer.MaxAllowedAccounts {
			return account.ErrMaxAllowedAccountsExceeded
		}

		acc, err := account.NewAccount(customerID, l.cfg.InitialBalance, account.FindMain(family) == nil)
		if err != nil {
			return err
		}
		if err := l.accountRepo.WithTx(tx).Create(ctx, acc); err != nil {
			return classifyStoreError(err)
		}
		created = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Account created", "account_id", created.ID, "customer_id", customerID, "is_main", created.IsMain)
	return created, nil
}

// Deactivate hands the main role to another account when needed, drains the
// balance into the main account and marks the account inactive
func (l *AccountLifecycleImpl) Deactivate(ctx context.Context, accountID int64) (*account.Account, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var target *account.Account
	err := l.run(ctx, "deactivate account", func(tx pgx.Tx) error {
		acc, family, err := l.lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return account.ErrAccountAlreadyDeactivated
		}

		if _, err := l.retire(ctx, tx, acc, family); err != nil {
			return err
		}

		if err := l.accountRepo.WithTx(tx).SetActive(ctx, acc.ID, false); err != nil {
			return classifyStoreError(err)
		}
		acc.IsActive = false
		target = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Account deactivated", "account_id", accountID, "customer_id", target.CustomerID)
	return target, nil
}

// Activate marks an inactive account active again. The main flag is left as is.
func (l *AccountLifecycleImpl) Activate(ctx context.Context, accountID int64) (*account.Account, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var target *account.Account
	err := l.run(ctx, "activate account", func(tx pgx.Tx) error {
		acc, _, err := l.lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if acc.IsActive {
			return account.ErrAccountAlreadyActivated
		}

		if err := l.accountRepo.WithTx(tx).SetActive(ctx, acc.ID, true); err != nil {
			return classifyStoreError(err)
		}
		acc.IsActive = true
		target = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Account activated", "account_id", accountID)
	return target, nil
}

// Delete retires the account like Deactivate, archives its last state and removes it.
// Inactive accounts can be deleted as well.
func (l *AccountLifecycleImpl) Delete(ctx context.Context, accountID int64) (*account.Snapshot, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var snapshot *account.Snapshot
	err := l.run(ctx, "delete account", func(tx pgx.Tx) error {
		acc, family, err := l.lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		before := *acc

		drainID, err := l.retire(ctx, tx, acc, family)
		if err != nil {
			return err
		}

		snapshot = before.Snapshot(drainID)
		if err := l.archiver.Archive(ctx, snapshot); err != nil {
			return fmt.Errorf("%w: %w", account.ErrArchiveFailed, err)
		}

		if err := l.accountRepo.WithTx(tx).Delete(ctx, acc.ID); err != nil {
			return classifyStoreError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Account deleted", "account_id", accountID, "customer_id", snapshot.Account.CustomerID)
	return snapshot, nil
}

// DeleteCustomer archives the customer together with all of its accounts and removes
// them. Customers whose accounts still hold a balance are refused; their funds have
// to be transferred out first.
func (l *AccountLifecycleImpl) DeleteCustomer(ctx context.Context, customerID int64) (*account.CustomerSnapshot, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var snapshot *account.CustomerSnapshot
	err := l.run(ctx, "delete customer", func(tx pgx.Tx) error {
		customer, family, err := l.lockCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if account.HoldsFunds(family) {
			return account.ErrCustomerHoldsFunds
		}

		snapshot = customer.Snapshot(family)
		if err := l.archiver.ArchiveCustomer(ctx, snapshot); err != nil {
			return fmt.Errorf("%w: %w", account.ErrArchiveFailed, err)
		}

		accounts := l.accountRepo.WithTx(tx)
		for _, acc := range family {
			if err := accounts.Delete(ctx, acc.ID); err != nil {
				return classifyStoreError(err)
			}
		}
		if err := l.customerRepo.WithTx(tx).Delete(ctx, customerID); err != nil {
			return classifyStoreError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Customer deleted", "customer_id", customerID, "accounts", len(snapshot.Accounts))
	return snapshot, nil
}

// RotateMain moves the main role from the current main account to the numerically
// first other active account of the customer
func (l *AccountLifecycleImpl) RotateMain(ctx context.Context, customerID int64) (*account.Account, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var newMain *account.Account
	err := l.run(ctx, "rotate main account", func(tx pgx.Tx) error {
		_, family, err := l.lockCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}

		current := account.FindMain(family)
		if current == nil {
			return account.ErrAccountNotFound{CustomerID: customerID}
		}

		newMain, err = l.rotate(ctx, tx, family, current)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Main account rotated", "customer_id", customerID, "main_account_id", newMain.ID)
	return newMain, nil
}

// retire prepares acc to leave the active set: it hands the main role over when acc
// holds it and drains a positive balance into the main account. It returns the
// drain transfer id, or nil when nothing was moved.
func (l *AccountLifecycleImpl) retire(ctx context.Context, tx pgx.Tx, acc *account.Account, family []*account.Account) (*int64, error) {
	mainAcc := account.FindMain(family)
	if acc.IsMain {
		rotated, err := l.rotate(ctx, tx, family, acc)
		if err != nil {
			return nil, err
		}
		mainAcc = rotated
	}

	if !acc.Balance.IsPositive() {
		return nil, nil
	}
	if mainAcc == nil {
		return nil, account.ErrCustomerHasNoOtherAccount
	}

	p := transfer.Participants{
		SenderCustomerID:   acc.CustomerID,
		SenderAccountID:    acc.ID,
		ReceiverCustomerID: mainAcc.CustomerID,
		ReceiverAccountID:  mainAcc.ID,
	}
	record, err := l.executor.ExecuteInTx(ctx, tx, p, acc.Balance, decimal.Zero, shared.TransferTypeInternalDrain)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Account drained", "account_id", acc.ID, "main_account_id", mainAcc.ID, "transfer_id", record.ID, "amount", record.Amount.String())
	acc.Balance = decimal.Zero
	return &record.ID, nil
}

// rotate clears the main flag of current before setting it on the successor, so the
// one-main-per-customer index never sees two mains
func (l *AccountLifecycleImpl) rotate(ctx context.Context, tx pgx.Tx, family []*account.Account, current *account.Account) (*account.Account, error) {
	candidate := account.NextMainCandidate(family, current.ID)
	if candidate == nil {
		return nil, account.ErrCustomerHasNoOtherAccount
	}

	accounts := l.accountRepo.WithTx(tx)
	if err := accounts.SetMain(ctx, current.ID, false); err != nil {
		return nil, classifyStoreError(err)
	}
	current.IsMain = false

	if err := accounts.SetMain(ctx, candidate.ID, true); err != nil {
		return nil, classifyStoreError(err)
	}
	candidate.IsMain = true

	return candidate, nil
}

// lockCustomer locks the customer row and then all of its accounts
func (l *AccountLifecycleImpl) lockCustomer(ctx context.Context, tx pgx.Tx, customerID int64) (*account.Customer, []*account.Account, error) {
	customer, err := l.customerRepo.WithTx(tx).LockForUpdate(ctx, customerID)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}

	family, err := l.accountRepo.WithTx(tx).LockByCustomerID(ctx, customerID)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}
	return customer, family, nil
}

// lockAccount locks the owner of accountID and its accounts, returning the locked
// copy of accountID along with its siblings
func (l *AccountLifecycleImpl) lockAccount(ctx context.Context, tx pgx.Tx, accountID int64) (*account.Account, []*account.Account, error) {
	unlocked, err := l.accountRepo.WithTx(tx).GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, classifyStoreError(err)
	}

	_, family, err := l.lockCustomer(ctx, tx, unlocked.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	for _, acc := range family {
		if acc.ID == accountID {
			return acc, family, nil
		}
	}
	// removed between the read and the lock
	return nil, nil, account.ErrAccountNotFound{AccountID: accountID}
}

// run executes fn in a transaction. Errors returned by fn are already classified;
// begin and commit failures are storage failures.
func (l *AccountLifecycleImpl) run(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	var fnErr error
	err := l.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr == nil {
		err = classifyStoreError(err)
	}

	l.logger.Warn("Account lifecycle operation failed",
		"operation", op,
		"elapsed", time.Since(start),
		"error", err,
	)
	return err
}

func (l *AccountLifecycleImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.cfg.OperationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.cfg.OperationTimeout)
}
