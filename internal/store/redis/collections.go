package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

const kindCollection = "collection"

// CreateCollection allocates an ID for rec, stores it and sets rec.ID.
func (s *Store) CreateCollection(ctx context.Context, rec *domain.CollectionRecord) error {
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}
	rec.ID = id
	if err := s.writeCollections(ctx, rec); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// GetCollection returns one collection, or ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, id uint64) (*domain.CollectionRecord, error) {
	data, err := s.client.Get(ctx, CollectionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	rec, err := domain.DecodeCollectionRecord(data)
	if err != nil {
		return nil, fmt.Errorf("collection %d: %w", id, err)
	}
	return rec, nil
}

// ListCollections returns every readable collection ordered by ID.
// Unreadable blobs are logged and skipped.
func (s *Store) ListCollections(ctx context.Context) ([]*domain.CollectionRecord, error) {
	ids, err := s.client.SMembers(ctx, KeyAllCollections).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get collection IDs: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, KeyPrefixCollection+id)
	}
	blobs, err := s.getBlobs(ctx, keys)
	if err != nil {
		return nil, err
	}

	records := make([]*domain.CollectionRecord, 0, len(blobs))
	for i, data := range blobs {
		if data == nil {
			continue
		}
		rec, err := domain.DecodeCollectionRecord(data)
		if err != nil {
			s.skipped(kindCollection, keys[i], err)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// SearchCollections returns collections whose name contains query,
// ignoring case.
func (s *Store) SearchCollections(ctx context.Context, query string) ([]*domain.CollectionRecord, error) {
	all, err := s.ListCollections(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matches := make([]*domain.CollectionRecord, 0, len(all))
	for _, rec := range all {
		if strings.Contains(strings.ToLower(rec.Name), q) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// UpdateCollection overwrites an existing collection, or returns ErrNotFound.
func (s *Store) UpdateCollection(ctx context.Context, rec *domain.CollectionRecord) error {
	n, err := s.client.Exists(ctx, CollectionKey(rec.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("collection %d: %w", rec.ID, ErrNotFound)
	}
	if err := s.writeCollections(ctx, rec); err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	return nil
}

// DeleteCollection removes a collection and reports whether it existed.
func (s *Store) DeleteCollection(ctx context.Context, id uint64) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, CollectionKey(id))
		pipe.SRem(ctx, KeyAllCollections, strconv.FormatUint(id, 10))
		pipe.HDel(ctx, KeyUsage, strconv.FormatUint(id, 10))
		s.touch(ctx, pipe, 0)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *Store) writeCollections(ctx context.Context, recs ...*domain.CollectionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	blobs, err := marshalAll(recs)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, rec := range recs {
			pipe.Set(ctx, CollectionKey(rec.ID), blobs[i], 0)
			pipe.SAdd(ctx, KeyAllCollections, strconv.FormatUint(rec.ID, 10))
		}
		s.touch(ctx, pipe, recs[len(recs)-1].ID)
		return nil
	})
	return err
}
