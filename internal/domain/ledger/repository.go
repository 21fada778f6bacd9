package ledger

import (
	"context"
	"strconv"
)

// Repository manages the ledger mirror
type Repository interface {
	// EnsureIndexes creates the unique transfer_id index; safe to call on every start
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, entry *Entry) error
	GetByTransferID(ctx context.Context, transferID int64) (*Entry, error)
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	TransferID int64
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + strconv.FormatInt(e.TransferID, 10)
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	// If the target TransferID is zero, consider it a match for any ErrEntryNotFound
	if t.TransferID == 0 {
		return true
	}
	return e.TransferID == t.TransferID
}

// ErrDuplicateEntry indicates the transfer was already projected
type ErrDuplicateEntry struct {
	TransferID int64
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + strconv.FormatInt(e.TransferID, 10)
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.TransferID == 0 {
		return true
	}
	return e.TransferID == t.TransferID
}
