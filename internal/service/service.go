// Package service holds the use cases behind the HTTP API: saving and
// restoring collections, managing profiles, backups.
package service

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/index"
	"github.com/MrSnakeDoc/restore-sites/internal/launcher"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/metrics"
	redisstore "github.com/MrSnakeDoc/restore-sites/internal/store/redis"
)

// Detector reports installed browsers.
type Detector interface {
	DetectProfile(p *domain.BrowserProfile) bool
	DetectAll() map[domain.Browser]bool
}

// Options wires a Service. Store, Index, Detector and Launcher are required.
type Options struct {
	Store    *redisstore.Store
	Index    *index.ProfileIndex
	Detector Detector
	Launcher launcher.Launcher
	LaunchOS string
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Now      func() time.Time
}

// Service implements the collection, profile and backup operations.
type Service struct {
	store    *redisstore.Store
	index    *index.ProfileIndex
	detector Detector
	launcher launcher.Launcher
	launchOS string
	metrics  *metrics.Metrics
	log      logger.Logger
	now      func() time.Time
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		store:    opts.Store,
		index:    opts.Index,
		detector: opts.Detector,
		launcher: opts.Launcher,
		launchOS: opts.LaunchOS,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SyncIndex rebuilds the profile index from the store.
func (s *Service) SyncIndex(ctx context.Context) error {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	mode, err := s.store.DefaultMode(ctx)
	if err != nil {
		return err
	}
	s.index.Update(profiles, mode, s.now())
	return nil
}
