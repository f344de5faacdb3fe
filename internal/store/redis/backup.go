package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
)

// ImportResult tells what an import wrote.
type ImportResult struct {
	Collections        int `json:"collections"`
	Profiles           int `json:"profiles"`
	SkippedCollections int `json:"skipped_collections"`
	SkippedProfiles    int `json:"skipped_profiles"`
}

// Export returns the whole database at the current schema version.
func (s *Store) Export(ctx context.Context) (*domain.Database, error) {
	meta, err := s.Meta(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	meta.RecordCount = len(records)
	return &domain.Database{
		Meta:     meta,
		Profiles: profiles,
		Data:     records,
	}, nil
}

// Replace drops every stored collection and profile and writes db instead.
// IDs are kept; max_id never drops below the highest imported ID.
func (s *Store) Replace(ctx context.Context, db *domain.Database) (ImportResult, error) {
	var oldCollections, oldProfiles *redis.StringSliceCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		oldCollections = pipe.SMembers(ctx, KeyAllCollections)
		oldProfiles = pipe.SMembers(ctx, KeyAllProfiles)
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to list existing items: %w", err)
	}

	if n := domain.EnforceSingleDefault(db.Profiles); n > 0 {
		s.log.Warn("import carried several default profiles, kept the first",
			logger.Int("cleared", n))
	}

	maxID := db.Meta.MaxID
	for _, rec := range db.Data {
		if rec.ID > maxID {
			maxID = rec.ID
		}
	}

	now := s.now()
	createdAt := db.Meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	mode := db.Meta.DefaultBrowserMode
	if !mode.Valid() {
		mode = domain.DefaultBrowserMode
	}

	collectionBlobs, err := marshalAll(db.Data)
	if err != nil {
		return ImportResult{}, err
	}
	profileBlobs, err := marshalAll(db.Profiles)
	if err != nil {
		return ImportResult{}, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range oldCollections.Val() {
			pipe.Del(ctx, KeyPrefixCollection+id)
		}
		for _, id := range oldProfiles.Val() {
			pipe.Del(ctx, ProfileKey(id))
		}
		pipe.Del(ctx, KeyAllCollections, KeyAllProfiles, KeyUsage)

		for i, rec := range db.Data {
			pipe.Set(ctx, CollectionKey(rec.ID), collectionBlobs[i], 0)
			pipe.SAdd(ctx, KeyAllCollections, strconv.FormatUint(rec.ID, 10))
		}
		for i, p := range db.Profiles {
			pipe.Set(ctx, ProfileKey(p.ID), profileBlobs[i], 0)
			pipe.SAdd(ctx, KeyAllProfiles, p.ID)
		}

		pipe.HSet(ctx, KeyMeta,
			fieldVersion, domain.SchemaVersionCurrent,
			fieldMaxID, maxID,
			fieldLastUpdatedID, db.Meta.LastUpdatedID,
			fieldCreatedAt, formatTime(createdAt),
			fieldLastUpdated, formatTime(now),
			fieldDefaultMode, string(mode),
		)
		return nil
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to replace database: %w", err)
	}

	return ImportResult{Collections: len(db.Data), Profiles: len(db.Profiles)}, nil
}

// Merge adds the collections of db whose name (case-insensitive) is not
// taken yet, under fresh IDs, and the profiles whose ID is free. An existing
// default profile keeps its flag over an imported one.
func (s *Store) Merge(ctx context.Context, db *domain.Database) (ImportResult, error) {
	existing, err := s.ListCollections(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult

	names := make(map[string]bool, len(existing)+len(db.Data))
	for _, rec := range existing {
		names[strings.ToLower(rec.Name)] = true
	}
	fresh := make([]*domain.CollectionRecord, 0, len(db.Data))
	for _, rec := range db.Data {
		key := strings.ToLower(rec.Name)
		if names[key] {
			s.log.Info("skipping imported collection, name already exists",
				logger.String("name", rec.Name))
			result.SkippedCollections++
			continue
		}
		names[key] = true
		fresh = append(fresh, rec)
	}

	_, hasDefault := domain.DefaultProfile(profiles)
	taken := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		taken[p.ID] = true
	}
	newProfiles := make([]*domain.BrowserProfile, 0, len(db.Profiles))
	for _, p := range db.Profiles {
		if taken[p.ID] {
			result.SkippedProfiles++
			continue
		}
		taken[p.ID] = true
		if p.IsDefault && hasDefault {
			p.IsDefault = false
		}
		hasDefault = hasDefault || p.IsDefault
		newProfiles = append(newProfiles, p)
	}

	if len(fresh) > 0 {
		first, err := s.reserveIDs(ctx, len(fresh))
		if err != nil {
			return ImportResult{}, err
		}
		now := s.now()
		for i, rec := range fresh {
			rec.ID = first + uint64(i)
			rec.UpdatedAt = now
		}
		if err := s.writeCollections(ctx, fresh...); err != nil {
			return ImportResult{}, fmt.Errorf("failed to merge collections: %w", err)
		}
	}
	if err := s.writeProfiles(ctx, newProfiles...); err != nil {
		return ImportResult{}, fmt.Errorf("failed to merge profiles: %w", err)
	}

	result.Collections = len(fresh)
	result.Profiles = len(newProfiles)
	return result, nil
}

func marshalAll[T any](items []T) ([][]byte, error) {
	out := make([][]byte, len(items))
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal item %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}
