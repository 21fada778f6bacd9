package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/transactionflow-billing/internal/domain/account"
	"github.com/transactionflow-billing/internal/domain/idempotency"
	"github.com/transactionflow-billing/internal/domain/shared"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

var badRequestErrors = []error{
	shared.ErrIncorrectFormat,
	shared.ErrNullObjectEntered,
	shared.ErrIndexOutOfRange,
	idempotency.ErrWrongKeyFormat,
	transfer.ErrSenderIsReceiver,
	transfer.ErrInvalidAmount,
	transfer.ErrTooManyDecimalPlaces,
	transfer.ErrAmountOutOfRange,
	account.ErrInvalidAmount,
	account.ErrEmptyCustomerName,
	account.ErrInvalidMaxAllowedAccounts,
}

var notFoundErrors = []error{
	account.ErrAccountNotFound{},
	account.ErrAccountsNotFound{},
	account.ErrCustomerNotFound{},
	transfer.ErrRecordNotFound{},
	shared.ErrObjectNotFound,
}

var conflictErrors = []error{
	account.ErrAccountAlreadyDeactivated,
	account.ErrAccountAlreadyActivated,
}

var unprocessableErrors = []error{
	account.ErrMaxAllowedAccountsExceeded,
	account.ErrCustomerHasNoOtherAccount,
	account.ErrCustomerHoldsFunds,
	account.ErrInsufficientFunds,
	idempotency.ErrKeyReused,
}

// respondWithError maps an engine error to its HTTP status. Rule violations carry
// their message to the client; everything else is logged and answered with 500.
func respondWithError(c *gin.Context, logger *slog.Logger, operation string, err error) {
	switch {
	case isAny(err, badRequestErrors):
		RespondBadRequest(c, err.Error())
	case isAny(err, notFoundErrors):
		RespondNotFound(c, err.Error())
	case isAny(err, conflictErrors):
		RespondConflict(c, err.Error())
	case isAny(err, unprocessableErrors):
		RespondUnprocessableEntity(c, "UNPROCESSABLE_ENTITY", err.Error())
	case errors.Is(err, context.Canceled):
		logger.Warn("Request cancelled", "operation", operation, "error", err)
		RespondInternalError(c)
	default:
		logger.Error("Operation failed", "operation", operation, "error", err)
		RespondInternalError(c)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
