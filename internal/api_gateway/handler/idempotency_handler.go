package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/transactionflow-billing/internal/api_gateway/service"
	"github.com/transactionflow-billing/internal/config"
)

// IdempotencyHandler hands out idempotency keys
type IdempotencyHandler struct {
	idempotencyService service.IdempotencyService
	logger             *slog.Logger
}

// NewIdempotencyHandler creates a new idempotency handler
func NewIdempotencyHandler(logger *slog.Logger, idempotencyService service.IdempotencyService) *IdempotencyHandler {
	return &IdempotencyHandler{
		idempotencyService: idempotencyService,
		logger:             logger,
	}
}

// Issue returns a fresh server generated numeric key
func (h *IdempotencyHandler) Issue(c *gin.Context) {
	key, err := h.idempotencyService.IssueKey(c.Request.Context())
	if err != nil {
		respondWithError(c, h.logger, "issue idempotency key", err)
		return
	}

	RespondCreated(c, IdempotencyKeyResponse{Key: strconv.FormatInt(key, 10), Format: config.KeyFormatNumeric})
}

// Derive builds an opaque key from the posted parameters
func (h *IdempotencyHandler) Derive(c *gin.Context) {
	var req DeriveKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	key := h.idempotencyService.DeriveKey(req.Parameters)
	RespondCreated(c, IdempotencyKeyResponse{Key: key, Format: config.KeyFormatOpaque})
}
