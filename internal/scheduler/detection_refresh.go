package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/service"
)

// DetectionRunner runs one browser detection pass.
type DetectionRunner interface {
	RefreshDetection(ctx context.Context) (service.DetectionReport, error)
}

// DetectionRefresher refreshes the is_detected flags periodically and on
// demand.
type DetectionRefresher struct {
	runner        DetectionRunner
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewDetectionRefresher creates a new detection refresher
func NewDetectionRefresher(
	runner DetectionRunner,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *DetectionRefresher {
	return &DetectionRefresher{
		runner:        runner,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic refresh process
func (dr *DetectionRefresher) Start(ctx context.Context) error {
	if err := dr.Refresh(ctx); err != nil {
		return fmt.Errorf("initial detection failed: %w", err)
	}

	ticker := time.NewTicker(dr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := dr.Refresh(ctx); err != nil {
					dr.logger.Error("failed to refresh detection", logger.Error(err))
				}
			case <-dr.manualTrigger:
				dr.logger.Info("manual detection triggered")
				if err := dr.Refresh(ctx); err != nil {
					dr.logger.Error("failed to refresh detection", logger.Error(err))
				}
			case <-dr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher
func (dr *DetectionRefresher) Stop() {
	close(dr.stopCh)
}

// Refresh runs one detection pass.
func (dr *DetectionRefresher) Refresh(ctx context.Context) error {
	report, err := dr.runner.RefreshDetection(ctx)
	if err != nil {
		return err
	}
	dr.logger.Debug("detection pass done", logger.Int("profiles_updated", report.Updated))
	return nil
}

// Trigger asks a running refresher for a pass without blocking. It reports
// false when a pass is already queued.
func Trigger(ch chan struct{}) bool {
	select {
	case ch <- struct{}{}:
		return true
	default:
		return false
	}
}
