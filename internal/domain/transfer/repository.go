package transfer

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Repository persists ledger records. Records are written pending and flipped to
// committed inside the same transaction; they are never modified afterwards.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	MarkCommitted(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRecordNotFound indicates a missing ledger record
type ErrRecordNotFound struct {
	ID int64
}

func (e ErrRecordNotFound) Error() string {
	return "transfer record not found: " + strconv.FormatInt(e.ID, 10)
}

// Is implements the errors.Is interface for ErrRecordNotFound
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.ID == 0 || e.ID == t.ID
}
