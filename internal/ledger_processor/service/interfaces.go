package service

import (
	"context"
	"errors"

	"github.com/transactionflow-billing/internal/domain/shared"
)

// ErrInvalidEvent marks events that can never be projected; they belong in the DLQ
var ErrInvalidEvent = errors.New("invalid transfer event")

// ProjectionService mirrors committed transfer events into the ledger.
type ProjectionService interface {
	Project(ctx context.Context, event *shared.TransferCommittedEvent) error
}

// EventValidator validates transfer events before they are projected
type EventValidator interface {
	Validate(ctx context.Context, event *shared.TransferCommittedEvent) error
	CheckProjected(ctx context.Context, event *shared.TransferCommittedEvent) (bool, error)
}
