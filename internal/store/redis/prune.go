package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PruneResult counts the dangling references a prune removed.
type PruneResult struct {
	Collections int `json:"collections"`
	Profiles    int `json:"profiles"`
	Counters    int `json:"counters"`
}

// Total returns the number of removed references.
func (r PruneResult) Total() int { return r.Collections + r.Profiles + r.Counters }

// Prune drops index set members and restore counters whose item key is gone.
func (s *Store) Prune(ctx context.Context) (PruneResult, error) {
	var res PruneResult

	collections, err := s.pruneSet(ctx, KeyAllCollections, KeyPrefixCollection)
	if err != nil {
		return res, err
	}
	res.Collections = collections

	profiles, err := s.pruneSet(ctx, KeyAllProfiles, KeyPrefixProfile)
	if err != nil {
		return res, err
	}
	res.Profiles = profiles

	ids, err := s.client.HKeys(ctx, KeyUsage).Result()
	if err != nil {
		return res, fmt.Errorf("failed to list restore counters: %w", err)
	}
	missing, err := s.missing(ctx, KeyPrefixCollection, ids)
	if err != nil {
		return res, err
	}
	if len(missing) > 0 {
		if err := s.client.HDel(ctx, KeyUsage, missing...).Err(); err != nil {
			return res, fmt.Errorf("failed to drop restore counters: %w", err)
		}
	}
	res.Counters = len(missing)

	return res, nil
}

func (s *Store) pruneSet(ctx context.Context, set, prefix string) (int, error) {
	members, err := s.client.SMembers(ctx, set).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", set, err)
	}
	missing, err := s.missing(ctx, prefix, members)
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		return 0, nil
	}

	args := make([]any, len(missing))
	for i, m := range missing {
		args[i] = m
	}
	if err := s.client.SRem(ctx, set, args...).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune %s: %w", set, err)
	}
	return len(missing), nil
}

// missing returns the ids whose prefix+id key does not exist.
func (s *Store) missing(ctx context.Context, prefix string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.IntCmd, len(ids))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.Exists(ctx, prefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check keys: %w", err)
	}

	var out []string
	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			out = append(out, ids[i])
		}
	}
	return out, nil
}
