package components

import (
	"log/slog"

	"github.com/transactionflow-billing/internal/config"
	"github.com/transactionflow-billing/internal/domain/ledger"
	"github.com/transactionflow-billing/internal/ledger_processor/service"
)

// CreateProjectionService wires the projection pipeline behind a worker pool.
func CreateProjectionService(
	ledgerRepo ledger.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProjectionService {
	validator := NewEventValidator(ledgerRepo, logger)
	baseService := service.NewProjectionService(validator, ledgerRepo, logger)

	workerPoolService, err := service.NewWorkerPoolProjectionService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool projection service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
