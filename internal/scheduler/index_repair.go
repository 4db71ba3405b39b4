package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/rcapi/internal/logger"
)

// IndexRebuilder is implemented by stores that keep a secondary ordering index.
type IndexRebuilder interface {
	RebuildIndex(ctx context.Context) (int, error)
}

// IndexRepair reconciles the replication controller index once at startup
type IndexRepair struct {
	store  IndexRebuilder
	logger logger.Logger
}

// NewIndexRepair creates a new index repair job
func NewIndexRepair(store IndexRebuilder, log logger.Logger) *IndexRepair {
	return &IndexRepair{
		store:  store,
		logger: log,
	}
}

// Run rebuilds the index and logs what changed
func (ir *IndexRepair) Run(ctx context.Context) error {
	ir.logger.Info("checking replication controller index")

	fixed, err := ir.store.RebuildIndex(ctx)
	if err != nil {
		return err
	}

	if fixed == 0 {
		ir.logger.Info("replication controller index is consistent")
		return nil
	}
	ir.logger.Warn("repaired replication controller index", logger.Int("entries", fixed))
	return nil
}
