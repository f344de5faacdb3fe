package redis

import (
	"context"
	"fmt"
	"strconv"
)

// IncrementRestores bumps the restore counter of a collection.
func (s *Store) IncrementRestores(ctx context.Context, id uint64) error {
	if err := s.client.HIncrBy(ctx, KeyUsage, strconv.FormatUint(id, 10), 1).Err(); err != nil {
		return fmt.Errorf("failed to count restore: %w", err)
	}
	return nil
}

// RestoreCounts returns how many times each collection was restored.
// Collections never restored are absent.
func (s *Store) RestoreCounts(ctx context.Context) (map[uint64]int64, error) {
	raw, err := s.client.HGetAll(ctx, KeyUsage).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get restore counts: %w", err)
	}

	stats := make(map[uint64]int64, len(raw))
	for field, val := range raw {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		stats[id] = n
	}
	return stats, nil
}
