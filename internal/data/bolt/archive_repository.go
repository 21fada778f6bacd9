// Package bolt keeps snapshots of deleted accounts and customers in the embedded archive file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/boltdb/bolt"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/platform/persistence"
)

const (
	// DeletedAccountsBucket holds one snapshot per deleted account keyed by account ID
	DeletedAccountsBucket = "deleted_accounts"
	// DeletedCustomersBucket holds one snapshot per deleted customer keyed by customer ID
	DeletedCustomersBucket = "deleted_customers"
)

// Buckets lists every bucket the archive file must be opened with
var Buckets = []string{DeletedAccountsBucket, DeletedCustomersBucket}

var ErrSnapshotNotFound = errors.New("archived snapshot not found")

// ArchiveRepository implements account.Archiver on top of bolt
type ArchiveRepository struct {
	db     *bolt.DB
	logger *slog.Logger
}

// NewArchiveRepository expects store to have been opened with Buckets
func NewArchiveRepository(logger *slog.Logger, store *persistence.BoltDB) *ArchiveRepository {
	return &ArchiveRepository{
		db:     store.DB(),
		logger: logger,
	}
}

// Archive writes the account snapshot. Archiving the same account twice overwrites the earlier copy.
func (r *ArchiveRepository) Archive(ctx context.Context, snapshot *account.Snapshot) error {
	if err := r.put(ctx, DeletedAccountsBucket, snapshot.Account.ID, snapshot); err != nil {
		r.logger.Error("Failed to archive account", "account_id", snapshot.Account.ID, "error", err)
		return fmt.Errorf("failed to archive account: %w", err)
	}

	r.logger.Debug("Archived account", "account_id", snapshot.Account.ID)
	return nil
}

// ArchiveCustomer writes the customer snapshot together with its accounts
func (r *ArchiveRepository) ArchiveCustomer(ctx context.Context, snapshot *account.CustomerSnapshot) error {
	if err := r.put(ctx, DeletedCustomersBucket, snapshot.Customer.ID, snapshot); err != nil {
		r.logger.Error("Failed to archive customer", "customer_id", snapshot.Customer.ID, "error", err)
		return fmt.Errorf("failed to archive customer: %w", err)
	}

	r.logger.Debug("Archived customer", "customer_id", snapshot.Customer.ID, "accounts", len(snapshot.Accounts))
	return nil
}

func (r *ArchiveRepository) put(ctx context.Context, bucket string, id int64, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s does not exist", bucket)
		}
		return b.Put(idKey(id), payload)
	})
}

// get decodes the snapshot stored under id into v
func (r *ArchiveRepository) get(ctx context.Context, bucket string, id int64, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrSnapshotNotFound
		}
		raw := b.Get(idKey(id))
		if raw == nil {
			return ErrSnapshotNotFound
		}
		// raw is only valid inside the transaction
		return json.Unmarshal(raw, v)
	})
}

func idKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
