package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
	"github.com/MrSnakeDoc/rcapi/internal/sources/bays"
)

// BayReloader keeps the bay store in line with the inventory file
type BayReloader struct {
	loader        *bays.Loader
	mapper        *bays.Mapper
	store         domain.BayWriter
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger <-chan struct{}
	lastReload    atomic.Int64 // unix nanos of the last successful reload
}

// NewBayReloader creates a new bay reloader. A receive on manualTrigger
// forces a reload outside the regular interval.
func NewBayReloader(
	inventoryFile string,
	store domain.BayWriter,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *BayReloader {
	return &BayReloader{
		loader:        bays.NewLoader(inventoryFile),
		mapper:        bays.NewMapper(),
		store:         store,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the inventory once and then keeps reloading it
func (br *BayReloader) Start(ctx context.Context) error {
	if err := br.Reload(ctx); err != nil {
		return fmt.Errorf("initial bay reload failed: %w", err)
	}

	ticker := time.NewTicker(br.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				br.reloadAndLog(ctx)
			case <-br.manualTrigger:
				br.logger.Info("manual bay reload triggered")
				br.reloadAndLog(ctx)
			case <-br.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (br *BayReloader) Stop() {
	close(br.stopCh)
}

func (br *BayReloader) reloadAndLog(ctx context.Context) {
	if err := br.Reload(ctx); err != nil {
		br.logger.Error("failed to reload bays", logger.Error(err))
	}
}

// Reload reads the inventory and upserts every valid bay. Bays that left
// the inventory are not touched here; BayPruner removes them once stale.
func (br *BayReloader) Reload(ctx context.Context) error {
	config, err := br.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load bays: %w", err)
	}

	loaded, problems, err := br.mapper.MapBays(config)
	for _, p := range problems {
		br.logger.Warn("skipping inventory entry", logger.String("reason", p))
	}
	if err != nil {
		return fmt.Errorf("failed to map bays: %w", err)
	}

	if err := br.store.SaveBaysMany(ctx, loaded); err != nil {
		return fmt.Errorf("failed to save bays: %w", err)
	}

	br.lastReload.Store(time.Now().UnixNano())
	br.logger.Info("bay inventory loaded", logger.Int("count", len(loaded)))
	return nil
}

// LastReload returns when the inventory was last stored, zero before the
// first success.
func (br *BayReloader) LastReload() time.Time {
	n := br.lastReload.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
