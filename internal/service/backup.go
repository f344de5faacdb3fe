package service

import (
	"context"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	redisstore "github.com/MrSnakeDoc/restore-sites/internal/store/redis"
)

// ImportReport describes an import.
type ImportReport struct {
	redisstore.ImportResult
	SourceVersion  uint32 `json:"source_version"`
	UpgradedFromV1 bool   `json:"upgraded_from_v1"`
	Replaced       bool   `json:"replaced"`
	// Invalid counts items dropped because their shape was not readable.
	InvalidProfiles int `json:"invalid_profiles"`
	InvalidRecords  int `json:"invalid_records"`
}

// Export returns the whole database.
func (s *Service) Export(ctx context.Context) (*domain.Database, error) {
	return s.store.Export(ctx)
}

// Import decodes a v1 or v2 database and either replaces the stored one or
// merges into it.
func (s *Service) Import(ctx context.Context, data []byte, replace bool) (ImportReport, error) {
	db, loaded, err := domain.DecodeDatabase(data)
	if err != nil {
		return ImportReport{}, err
	}
	s.metrics.Skipped("profile", loaded.SkippedProfiles)
	s.metrics.Skipped("collection", loaded.SkippedRecords)

	var res redisstore.ImportResult
	if replace {
		res, err = s.store.Replace(ctx, db)
	} else {
		res, err = s.store.Merge(ctx, db)
	}
	if err != nil {
		return ImportReport{}, err
	}

	if err := s.SyncIndex(ctx); err != nil {
		s.log.Warn("failed to refresh profile index after import", logger.Error(err))
	}

	s.log.Info("database imported",
		logger.Bool("replace", replace),
		logger.Int("collections", res.Collections),
		logger.Int("profiles", res.Profiles),
		logger.Int("invalid_records", loaded.SkippedRecords))

	return ImportReport{
		ImportResult:    res,
		SourceVersion:   loaded.SourceVersion,
		UpgradedFromV1:  loaded.UpgradedFromV1,
		Replaced:        replace,
		InvalidProfiles: loaded.SkippedProfiles,
		InvalidRecords:  loaded.SkippedRecords,
	}, nil
}
