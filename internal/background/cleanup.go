package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/lifecarechoice/leadgate/internal/kvstore"
)

// CleanupManager periodically sweeps expired anti-forgery tokens and stale
// rate-limit counters out of the in-memory stores. Redis-backed stores
// expire keys on their own and register as no-ops here.
type CleanupManager struct {
	sweepers map[string]kvstore.Sweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewCleanupManager(logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sweepers: make(map[string]kvstore.Sweeper),
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register adds a store to the sweep rotation if it needs sweeping.
func (cm *CleanupManager) Register(name string, store kvstore.Store) {
	if sweeper, ok := store.(kvstore.Sweeper); ok {
		cm.sweepers[name] = sweeper
	}
}

// Start begins the periodic sweep task
func (cm *CleanupManager) Start(ctx context.Context) {
	if len(cm.sweepers) == 0 {
		return
	}

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runSweep()

	for {
		select {
		case <-ticker.C:
			cm.runSweep()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runSweep() {
	for name, sweeper := range cm.sweepers {
		removed := sweeper.Sweep()
		if removed > 0 {
			cm.logger.Info("expired entries swept",
				slog.String("store", name),
				slog.Int("removed", removed))
		}
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
