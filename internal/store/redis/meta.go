package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
)

// Init writes the header of an empty database. Existing fields are kept.
func (s *Store) Init(ctx context.Context) error {
	now := formatTime(s.now())
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, KeyMeta, fieldVersion, domain.SchemaVersionCurrent)
		pipe.HSetNX(ctx, KeyMeta, fieldMaxID, 0)
		pipe.HSetNX(ctx, KeyMeta, fieldLastUpdatedID, 0)
		pipe.HSetNX(ctx, KeyMeta, fieldCreatedAt, now)
		pipe.HSetNX(ctx, KeyMeta, fieldLastUpdated, now)
		pipe.HSetNX(ctx, KeyMeta, fieldDefaultMode, string(domain.DefaultBrowserMode))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to init database header: %w", err)
	}
	return nil
}

// Meta reads the database header. RecordCount is the live collection count.
func (s *Store) Meta(ctx context.Context) (domain.DatabaseMeta, error) {
	var (
		fields *redis.MapStringStringCmd
		count  *redis.IntCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, KeyMeta)
		count = pipe.SCard(ctx, KeyAllCollections)
		return nil
	})
	if err != nil {
		return domain.DatabaseMeta{}, fmt.Errorf("failed to read database header: %w", err)
	}

	h := fields.Val()
	meta := domain.DatabaseMeta{
		Version:            domain.SchemaVersionCurrent,
		MaxID:              parseUint(h[fieldMaxID]),
		LastUpdatedID:      parseUint(h[fieldLastUpdatedID]),
		LastUpdated:        parseTime(h[fieldLastUpdated]),
		CreatedAt:          parseTime(h[fieldCreatedAt]),
		RecordCount:        int(count.Val()),
		DefaultBrowserMode: s.modeOrDefault(h[fieldDefaultMode]),
	}
	return meta, nil
}

// DefaultMode returns the global default browser mode. An unset or unknown
// value reads as domain.DefaultBrowserMode.
func (s *Store) DefaultMode(ctx context.Context) (domain.BrowserMode, error) {
	raw, err := s.client.HGet(ctx, KeyMeta, fieldDefaultMode).Result()
	if errors.Is(err, redis.Nil) {
		return domain.DefaultBrowserMode, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get default mode: %w", err)
	}
	return s.modeOrDefault(raw), nil
}

// SetDefaultMode stores the global default browser mode.
func (s *Store) SetDefaultMode(ctx context.Context, mode domain.BrowserMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown browser mode %q", domain.ErrInvalidShape, mode)
	}
	err := s.client.HSet(ctx, KeyMeta,
		fieldDefaultMode, string(mode),
		fieldLastUpdated, formatTime(s.now()),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set default mode: %w", err)
	}
	return nil
}

// nextID allocates a collection ID. IDs are never reused.
func (s *Store) nextID(ctx context.Context) (uint64, error) {
	return s.reserveIDs(ctx, 1)
}

// reserveIDs allocates n consecutive IDs and returns the first one.
func (s *Store) reserveIDs(ctx context.Context, n int) (uint64, error) {
	last, err := s.client.HIncrBy(ctx, KeyMeta, fieldMaxID, int64(n)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate collection id: %w", err)
	}
	return uint64(last) - uint64(n) + 1, nil
}

// touch records a write in the header, inside the caller's pipeline.
func (s *Store) touch(ctx context.Context, pipe redis.Pipeliner, id uint64) {
	values := []any{fieldLastUpdated, formatTime(s.now())}
	if id > 0 {
		values = append(values, fieldLastUpdatedID, id)
	}
	pipe.HSet(ctx, KeyMeta, values...)
}

func (s *Store) modeOrDefault(raw string) domain.BrowserMode {
	if raw == "" {
		return domain.DefaultBrowserMode
	}
	mode, err := domain.ParseBrowserMode(raw)
	if err != nil {
		s.log.Warn("stored default mode is invalid, using default",
			logger.String("value", raw))
		return domain.DefaultBrowserMode
	}
	return mode
}

func parseUint(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
