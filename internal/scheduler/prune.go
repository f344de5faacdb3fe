package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	redisstore "github.com/MrSnakeDoc/restore-sites/internal/store/redis"
)

// Pruner removes dangling store references.
type Pruner interface {
	Prune(ctx context.Context) (redisstore.PruneResult, error)
}

// GarbageCollector prunes the store periodically.
type GarbageCollector struct {
	pruner   Pruner
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(pruner Pruner, log logger.Logger, interval time.Duration) *GarbageCollector {
	return &GarbageCollector{
		pruner:   pruner,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect runs one prune.
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	res, err := gc.pruner.Prune(ctx)
	if err != nil {
		return err
	}

	if res.Total() > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("collections", res.Collections),
			logger.Int("profiles", res.Profiles),
			logger.Int("counters", res.Counters))
	} else {
		gc.logger.Debug("no items to garbage collect")
	}
	return nil
}
