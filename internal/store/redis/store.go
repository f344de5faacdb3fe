package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/metrics"
)

var (
	// ErrNotFound is returned when a collection or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateProfile is returned when creating a profile whose ID is taken.
	ErrDuplicateProfile = errors.New("profile already exists")
)

// Store persists collections, profiles and the database header in Redis.
// Items are stored as JSON blobs indexed by one set per kind.
type Store struct {
	client  *redis.Client
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics counts items skipped by the shape guards.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		client: client,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errors.New("redis client not initialized")
	}
	return s.client.Ping(ctx).Err()
}

// getBlobs fetches many JSON blobs in one round trip. Missing keys come back
// as nil entries.
func (s *Store) getBlobs(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %d keys: %w", len(keys), err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

func (s *Store) skipped(kind, key string, err error) {
	s.log.Warn("skipping unreadable item",
		logger.String("kind", kind),
		logger.String("key", key),
		logger.Error(err))
	s.metrics.Skipped(kind, 1)
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
