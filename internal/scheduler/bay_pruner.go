package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
)

// DefaultStaleAfter is how long a bay may be missing from the inventory
// before it is deleted.
const DefaultStaleAfter = 24 * time.Hour

// BayPruner deletes bays that have not been seen in the inventory for a while
type BayPruner struct {
	store      domain.BayWriter
	logger     logger.Logger
	interval   time.Duration
	staleAfter time.Duration
	stopCh     chan struct{}
	now        func() time.Time
}

// NewBayPruner creates a new pruner
func NewBayPruner(store domain.BayWriter, log logger.Logger, interval, staleAfter time.Duration) *BayPruner {
	if staleAfter == 0 {
		staleAfter = DefaultStaleAfter
	}
	return &BayPruner{
		store:      store,
		logger:     log,
		interval:   interval,
		staleAfter: staleAfter,
		stopCh:     make(chan struct{}),
		now:        time.Now,
	}
}

// Start begins the periodic sweep
func (bp *BayPruner) Start(ctx context.Context) {
	ticker := time.NewTicker(bp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := bp.Prune(ctx); err != nil {
					bp.logger.Error("bay prune failed", logger.Error(err))
				}
			case <-bp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the pruner
func (bp *BayPruner) Stop() {
	close(bp.stopCh)
}

// Prune deletes stale bays and returns how many went away. Replication
// controllers that still reference a pruned bay keep their bay_uuid;
// only new assignments to it are rejected.
func (bp *BayPruner) Prune(ctx context.Context) (int, error) {
	all, err := bp.store.GetAllBays(ctx)
	if err != nil {
		return 0, err
	}

	now := bp.now()
	deleted := 0
	for _, bay := range all {
		if bay.LastSeenAt.IsZero() {
			continue
		}
		age := now.Sub(bay.LastSeenAt)
		if age < bp.staleAfter {
			continue
		}

		if err := bp.store.DeleteBay(ctx, bay.UUID); err != nil {
			bp.logger.Warn("failed to delete stale bay",
				logger.String("bay_uuid", bay.UUID),
				logger.Error(err))
			continue
		}

		bp.logger.Info("pruned stale bay",
			logger.String("bay_uuid", bay.UUID),
			logger.String("name", bay.Name),
			logger.Duration("unseen_for", age))
		deleted++
	}

	if deleted == 0 {
		bp.logger.Debug("no stale bays")
	}
	return deleted, nil
}
