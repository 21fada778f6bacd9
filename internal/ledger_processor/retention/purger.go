package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/transactionflow-billing/internal/config"
)

// Store deletes stored responses completed before cutoff
type Store interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Purger expires idempotency entries once they are older than the retention window.
// A purged key is treated as never seen.
type Purger struct {
	store     Store
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewPurger(cfg *config.IdempotencyConfig, store Store, logger *slog.Logger) *Purger {
	return &Purger{
		store:     store,
		retention: cfg.Retention,
		interval:  cfg.PurgeInterval,
		now:       time.Now,
		logger:    logger,
	}
}

// Enabled reports whether a retention window is configured
func (p *Purger) Enabled() bool {
	return p.retention > 0 && p.interval > 0
}

// Start purges on every tick until ctx is cancelled. It returns at once when
// retention is disabled.
func (p *Purger) Start(ctx context.Context) {
	if !p.Enabled() {
		p.logger.Info("Idempotency retention disabled, stored responses are kept forever")
		return
	}

	p.logger.Info("Starting idempotency purger",
		"retention", p.retention.String(),
		"interval", p.interval.String(),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Idempotency purger stopping due to context cancellation.")
			return
		case <-ticker.C:
			if _, err := p.PurgeOnce(ctx); err != nil {
				p.logger.Error("Idempotency purge failed", "error", err)
			}
		}
	}
}

// PurgeOnce deletes every entry older than the retention window
func (p *Purger) PurgeOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	cutoff := p.now().Add(-p.retention)

	deleted, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge idempotency entries before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		p.logger.Info("Purged expired idempotency entries",
			"deleted", deleted,
			"cutoff", cutoff,
			"elapsed", time.Since(start).String(),
		)
	}
	return deleted, nil
}
