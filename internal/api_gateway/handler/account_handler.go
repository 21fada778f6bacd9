package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/transactionflow-billing/internal/api_gateway/service"
)

// AccountHandler handles HTTP requests for customer and account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// CreateCustomer handles creation of a customer together with its main account
func (h *AccountHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customer, mainAccount, err := h.accountService.CreateCustomer(c.Request.Context(), req.Name, req.MaxAllowedAccounts)
	if err != nil {
		respondWithError(c, h.logger, "create customer", err)
		return
	}

	RespondCreated(c, mapCustomerToResponse(customer, mainAccount))
}

// CreateAccount opens a new account for the customer in the path
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), customerID)
	if err != nil {
		respondWithError(c, h.logger, "create account", err)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// ListByCustomer returns every account of the customer in the path
func (h *AccountHandler) ListByCustomer(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	accounts, err := h.accountService.ListCustomerAccounts(c.Request.Context(), customerID)
	if err != nil {
		respondWithError(c, h.logger, "list accounts", err)
		return
	}

	response := AccountListResponse{Accounts: make([]AccountResponse, 0, len(accounts))}
	for _, acc := range accounts {
		response.Accounts = append(response.Accounts, mapAccountToResponse(acc))
	}
	RespondOK(c, response)
}

// RotateMain moves the customer's main role to its next active account
func (h *AccountHandler) RotateMain(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	acc, err := h.accountService.RotateMainAccount(c.Request.Context(), customerID)
	if err != nil {
		respondWithError(c, h.logger, "rotate main account", err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, "get account", err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Deactivate drains the account into the customer's main account and marks it inactive
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.DeactivateAccount(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, "deactivate account", err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Activate marks an inactive account active
func (h *AccountHandler) Activate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.ActivateAccount(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, "activate account", err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Delete removes the account and returns its archived snapshot
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	snapshot, err := h.accountService.DeleteAccount(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, "delete account", err)
		return
	}

	RespondOK(c, mapSnapshotToResponse(snapshot))
}

// DeleteCustomer archives and removes the customer along with its accounts
func (h *AccountHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid customer ID")
		return
	}

	snapshot, err := h.accountService.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, "delete customer", err)
		return
	}

	RespondOK(c, mapCustomerSnapshotToResponse(snapshot))
}
