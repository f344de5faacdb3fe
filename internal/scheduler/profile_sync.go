package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/logger"
)

// IndexSyncer rebuilds the in-memory profile index from the store.
type IndexSyncer interface {
	SyncIndex(ctx context.Context) error
}

// ProfileSyncer keeps the profile index close to Redis, so restores can
// still resolve profiles while Redis is down.
type ProfileSyncer struct {
	syncer   IndexSyncer
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewProfileSyncer creates a new profile syncer
func NewProfileSyncer(syncer IndexSyncer, log logger.Logger, interval time.Duration) *ProfileSyncer {
	return &ProfileSyncer{
		syncer:   syncer,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start syncs once, then every interval.
func (ps *ProfileSyncer) Start(ctx context.Context) error {
	if err := ps.Sync(ctx); err != nil {
		ps.logger.Warn("initial profile sync failed", logger.Error(err))
	}

	ticker := time.NewTicker(ps.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ps.Sync(ctx); err != nil {
					ps.logger.Error("failed to sync profiles", logger.Error(err))
				}
			case <-ps.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the syncer
func (ps *ProfileSyncer) Stop() {
	close(ps.stopCh)
}

// Sync loads profiles and the default mode from Redis into the index.
func (ps *ProfileSyncer) Sync(ctx context.Context) error {
	ps.logger.Debug("syncing profiles from redis to memory")
	return ps.syncer.SyncIndex(ctx)
}
