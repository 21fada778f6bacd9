package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/transactionflow-billing/internal/api_gateway/handler"
	"github.com/transactionflow-billing/internal/api_gateway/middleware"
	"github.com/transactionflow-billing/internal/billing"
)

// handlers groups the HTTP handlers mounted by setupRouter
type handlers struct {
	accounts    *handler.AccountHandler
	transfers   *handler.TransferHandler
	idempotency *handler.IdempotencyHandler
}

// setupRouter configures API routes and middleware for the application. Every route
// with a side effect runs behind the idempotency middleware.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	guard billing.IdempotencyGuard,
	keyFormat string,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	once := middleware.Idempotency(guard, keyFormat, logger.With("component", "idempotency_middleware"))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Customer operations
		customers := v1.Group("/customers")
		{
			customers.POST("", once, h.accounts.CreateCustomer)
			customers.DELETE("/:id", once, h.accounts.DeleteCustomer)
			customers.GET("/:id/accounts", h.accounts.ListByCustomer)
			customers.POST("/:id/accounts", once, h.accounts.CreateAccount)
			customers.POST("/:id/main-account/rotate", once, h.accounts.RotateMain)
		}

		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:id", h.accounts.GetByID)
			accounts.POST("/:id/deactivate", once, h.accounts.Deactivate)
			accounts.POST("/:id/activate", once, h.accounts.Activate)
			accounts.DELETE("/:id", once, h.accounts.Delete)
		}

		// Transfer operations
		transfers := v1.Group("/transfers")
		{
			transfers.POST("", once, h.transfers.Create)
			transfers.GET("/:id", h.transfers.GetByID)
		}

		// Idempotency key issuance
		keys := v1.Group("/idempotency/keys")
		{
			keys.POST("", h.idempotency.Issue)
			keys.POST("/derived", h.idempotency.Derive)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
