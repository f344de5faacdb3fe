package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

const kindProfile = "profile"

// CreateProfile stores a new profile. The ID must be free, otherwise
// ErrDuplicateProfile is returned.
func (s *Store) CreateProfile(ctx context.Context, p *domain.BrowserProfile) error {
	if err := s.saveProfile(ctx, p, true); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile returns one profile, or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, id string) (*domain.BrowserProfile, error) {
	data, err := s.client.Get(ctx, ProfileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p, err := domain.DecodeBrowserProfile(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return p, nil
}

// ListProfiles returns every readable profile, oldest first.
func (s *Store) ListProfiles(ctx context.Context) ([]*domain.BrowserProfile, error) {
	ids, err := s.client.SMembers(ctx, KeyAllProfiles).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile IDs: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ProfileKey(id))
	}
	blobs, err := s.getBlobs(ctx, keys)
	if err != nil {
		return nil, err
	}

	profiles := make([]*domain.BrowserProfile, 0, len(blobs))
	for i, data := range blobs {
		if data == nil {
			continue
		}
		p, err := domain.DecodeBrowserProfile(data)
		if err != nil {
			s.skipped(kindProfile, keys[i], err)
			continue
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if !profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
		}
		return profiles[i].ID < profiles[j].ID
	})
	return profiles, nil
}

// UpdateProfile overwrites an existing profile, or returns ErrNotFound.
func (s *Store) UpdateProfile(ctx context.Context, p *domain.BrowserProfile) error {
	if err := s.saveProfile(ctx, p, false); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// DeleteProfile removes a profile and reports whether it existed.
// Collections pointing at it are left alone; their reference goes stale.
func (s *Store) DeleteProfile(ctx context.Context, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, ProfileKey(id))
		pipe.SRem(ctx, KeyAllProfiles, id)
		s.touch(ctx, pipe, 0)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	return del.Val() > 0, nil
}

// maxTxRetries bounds how often an optimistic transaction is replayed
// after a concurrent write to one of its watched keys.
const maxTxRetries = 10

// saveProfile writes p in one optimistic transaction. create requires the
// ID to be free, otherwise it must exist. When p is the default, every
// other default profile is cleared in the same transaction.
func (s *Store) saveProfile(ctx context.Context, p *domain.BrowserProfile, create bool) error {
	key := ProfileKey(p.ID)

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check profile: %w", err)
		}
		if create && n > 0 {
			return fmt.Errorf("profile %s: %w", p.ID, ErrDuplicateProfile)
		}
		if !create && n == 0 {
			return fmt.Errorf("profile %s: %w", p.ID, ErrNotFound)
		}

		batch := []*domain.BrowserProfile{p}
		if p.IsDefault {
			others, err := s.otherDefaults(ctx, tx, p.ID)
			if err != nil {
				return err
			}
			batch = append(batch, others...)
		}
		blobs, err := marshalAll(batch)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, bp := range batch {
				pipe.Set(ctx, ProfileKey(bp.ID), blobs[i], 0)
				pipe.SAdd(ctx, KeyAllProfiles, bp.ID)
			}
			s.touch(ctx, pipe, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key, KeyAllProfiles)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("profile %s: %w", p.ID, redis.TxFailedErr)
}

// otherDefaults watches every listed profile and returns the defaults other
// than id, already flipped to non-default.
func (s *Store) otherDefaults(ctx context.Context, tx *redis.Tx, id string) ([]*domain.BrowserProfile, error) {
	ids, err := tx.SMembers(ctx, KeyAllProfiles).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile IDs: %w", err)
	}
	keys := make([]string, 0, len(ids))
	for _, other := range ids {
		if other != id {
			keys = append(keys, ProfileKey(other))
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	if err := tx.Watch(ctx, keys...).Err(); err != nil {
		return nil, fmt.Errorf("failed to watch profiles: %w", err)
	}

	vals, err := tx.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %d keys: %w", len(keys), err)
	}
	now := s.now()
	var out []*domain.BrowserProfile
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		other, err := domain.DecodeBrowserProfile([]byte(str))
		if err != nil {
			s.skipped(kindProfile, keys[i], err)
			continue
		}
		if other.IsDefault {
			other.IsDefault = false
			other.UpdatedAt = now
			out = append(out, other)
		}
	}
	return out, nil
}

func (s *Store) writeProfiles(ctx context.Context, profiles ...*domain.BrowserProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	blobs, err := marshalAll(profiles)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, p := range profiles {
			pipe.Set(ctx, ProfileKey(p.ID), blobs[i], 0)
			pipe.SAdd(ctx, KeyAllProfiles, p.ID)
		}
		s.touch(ctx, pipe, 0)
		return nil
	})
	return err
}
