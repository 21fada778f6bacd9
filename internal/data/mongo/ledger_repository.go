package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transactionflow-billing/internal/domain/ledger"
)

const (
	// LedgerCollectionName is the name of the ledger collection in MongoDB
	LedgerCollectionName = "ledger_entries"

	transferIDIndexName = "uq_ledger_entries_transfer_id"
)

// ledgerCollection is the subset of *mongo.Collection the repository uses
type ledgerCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

type indexCreator interface {
	CreateOne(ctx context.Context, model mongo.IndexModel, opts ...*options.CreateIndexesOptions) (string, error)
}

// LedgerRepository implements the ledger.Repository interface for MongoDB
type LedgerRepository struct {
	collection ledgerCollection
	indexes    indexCreator
	logger     *slog.Logger
}

// NewLedgerRepository creates a new MongoDB ledger repository
func NewLedgerRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	collection := db.Collection(LedgerCollectionName)
	return &LedgerRepository{
		collection: collection,
		indexes:    collection.Indexes(),
		logger:     logger,
	}
}

// EnsureIndexes creates the unique transfer_id index that makes projection idempotent
func (r *LedgerRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "transfer_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(transferIDIndexName),
	}

	if _, err := r.indexes.CreateOne(ctx, model); err != nil {
		r.logger.Error("Failed to create ledger index", "index", transferIDIndexName, "error", err)
		return fmt.Errorf("failed to create ledger index: %w", err)
	}

	return nil
}

// Create stores a new ledger entry.
// Returns ErrDuplicateEntry if an entry with the same transfer ID exists.
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ErrDuplicateEntry{TransferID: entry.TransferID}
		}
		r.logger.Error("Failed to create ledger entry",
			"transfer_id", entry.TransferID,
			"error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByTransferID retrieves a ledger entry by its transfer ID.
// Returns ErrEntryNotFound if no entry exists for the given transfer.
func (r *LedgerRepository) GetByTransferID(ctx context.Context, transferID int64) (*ledger.Entry, error) {
	filter := bson.M{"transfer_id": transferID}

	var entry ledger.Entry
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.ErrEntryNotFound{TransferID: transferID}
		}
		r.logger.Error("Failed to get ledger entry",
			"transfer_id", transferID,
			"error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &entry, nil
}
