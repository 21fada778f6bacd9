package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/transactionflow-billing/internal/api_gateway/service"
	"github.com/transactionflow-billing/internal/domain/transfer"
)

// TransferHandler handles HTTP requests for transfers
type TransferHandler struct {
	transferService service.TransferService
	logger          *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// Create moves money between the participants selected by the request's mode
func (h *TransferHandler) Create(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mode, err := transfer.ParseMode(req.Mode)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	record, err := h.transferService.TransferMoney(c.Request.Context(), mode, req.SenderRef, req.ReceiverRef, req.Amount, req.Fee)
	if err != nil {
		respondWithError(c, h.logger, "transfer money", err)
		return
	}

	RespondCreated(c, mapTransferToResponse(record))
}

// GetByID retrieves a transfer record, returning 404 if not found
func (h *TransferHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	record, err := h.transferService.GetTransfer(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.logger, "get transfer", err)
		return
	}

	RespondOK(c, mapTransferToResponse(record))
}
