package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/launcher"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/metrics"
)

// CollectionInput is the user-editable part of a collection.
type CollectionInput struct {
	Name   string                  `json:"name"`
	Sites  []domain.SiteEntry      `json:"sites"`
	Config domain.CollectionConfig `json:"config"`
}

// RestoreResult is what a restore resolved to and handed to the launcher.
type RestoreResult struct {
	Config domain.EffectiveConfig `json:"config"`
	URLs   []string               `json:"urls"`
	Plan   launcher.Plan          `json:"plan"`
	// FromIndex is set when profiles came from the in-memory index because
	// the store could not be read.
	FromIndex bool `json:"from_index,omitempty"`
}

// ParseSites turns pasted text into site entries.
func (s *Service) ParseSites(text string) []domain.SiteEntry {
	sites := domain.ParseBulk(text)
	s.metrics.AddParsed(len(sites))
	return sites
}

// SaveCollection stores a new collection. A blank name becomes
// "Collection <unix time>".
func (s *Service) SaveCollection(ctx context.Context, in CollectionInput) (*domain.CollectionRecord, error) {
	sites, err := domain.NormalizeSites(in.Sites)
	if err != nil {
		return nil, err
	}

	now := s.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = domain.DefaultCollectionName(now)
	}

	rec := &domain.CollectionRecord{
		Name:      name,
		Sites:     sites,
		Config:    in.Config,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCollection(ctx, rec); err != nil {
		return nil, err
	}

	s.metrics.CollectionSaved()
	s.log.Info("collection saved",
		logger.Uint64("id", rec.ID),
		logger.Int("sites", len(rec.Sites)))
	return rec, nil
}

// ListCollections returns every collection, or those whose name contains
// query when it is not blank.
func (s *Service) ListCollections(ctx context.Context, query string) ([]*domain.CollectionRecord, error) {
	if q := strings.TrimSpace(query); q != "" {
		return s.store.SearchCollections(ctx, q)
	}
	return s.store.ListCollections(ctx)
}

// GetCollection returns one collection.
func (s *Service) GetCollection(ctx context.Context, id uint64) (*domain.CollectionRecord, error) {
	return s.store.GetCollection(ctx, id)
}

// UpdateCollection replaces sites and config of a collection. created_at is
// kept and a blank name keeps the current one.
func (s *Service) UpdateCollection(ctx context.Context, id uint64, in CollectionInput) (*domain.CollectionRecord, error) {
	rec, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}

	sites, err := domain.NormalizeSites(in.Sites)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		rec.Name = name
	}
	rec.Sites = sites
	rec.Config = in.Config
	rec.UpdatedAt = s.now()

	if err := s.store.UpdateCollection(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteCollection reports whether the collection existed.
func (s *Service) DeleteCollection(ctx context.Context, id uint64) (bool, error) {
	return s.store.DeleteCollection(ctx, id)
}

// CollectionText renders a collection in the bulk text form.
func (s *Service) CollectionText(ctx context.Context, id uint64) (string, error) {
	rec, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return "", err
	}
	return domain.FormatBulk(rec.Sites), nil
}

// RestoreCounts returns how often each collection was restored.
func (s *Service) RestoreCounts(ctx context.Context) (map[uint64]int64, error) {
	return s.store.RestoreCounts(ctx)
}

// RestoreCollection resolves the config of a stored collection and launches
// its sites.
func (s *Service) RestoreCollection(ctx context.Context, id uint64) (RestoreResult, error) {
	rec, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return RestoreResult{}, err
	}

	res, err := s.restore(ctx, rec.Sites, rec.Config)
	if err != nil {
		return res, fmt.Errorf("collection %d: %w", id, err)
	}

	if err := s.store.IncrementRestores(ctx, id); err != nil {
		s.log.Warn("failed to count restore", logger.Uint64("id", id), logger.Error(err))
	}
	return res, nil
}

// RestoreSites launches sites that were never saved.
func (s *Service) RestoreSites(ctx context.Context, sites []domain.SiteEntry, cfg domain.CollectionConfig) (RestoreResult, error) {
	normalized, err := domain.NormalizeSites(sites)
	if err != nil {
		return RestoreResult{}, err
	}
	return s.restore(ctx, normalized, cfg)
}

func (s *Service) restore(ctx context.Context, sites []domain.SiteEntry, cfg domain.CollectionConfig) (RestoreResult, error) {
	profiles, mode, fromIndex, err := s.resolutionInputs(ctx)
	if err != nil {
		s.metrics.Restore(metrics.OutcomeFailed)
		return RestoreResult{}, err
	}

	eff, err := domain.Resolve(cfg, profiles, mode)
	if err != nil {
		s.metrics.Restore(metrics.OutcomeUnresolved)
		return RestoreResult{}, err
	}

	urls := domain.URLs(sites)
	plan, err := launcher.Build(s.launchOS, eff, urls)
	if err == nil {
		err = s.launcher.Launch(ctx, eff, urls)
	}
	if err != nil {
		s.metrics.Restore(metrics.OutcomeFailed)
		return RestoreResult{}, err
	}

	s.metrics.Restore(metrics.OutcomeLaunched)
	return RestoreResult{Config: eff, URLs: urls, Plan: plan, FromIndex: fromIndex}, nil
}

// resolutionInputs loads profiles and the default mode in parallel. When the
// store fails and the index has synced at least once, the index is used.
func (s *Service) resolutionInputs(ctx context.Context) (map[string]domain.BrowserProfile, domain.BrowserMode, bool, error) {
	var (
		profiles []*domain.BrowserProfile
		mode     domain.BrowserMode
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.store.ListProfiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		mode, err = s.store.DefaultMode(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil || s.index.LastSync().IsZero() {
			return nil, "", false, err
		}
		s.log.Warn("store unavailable, resolving from profile index", logger.Error(err))
		snap, m := s.index.Snapshot()
		return snap, m, true, nil
	}
	return domain.ProfileMap(profiles), mode, false, nil
}
