package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/semantle/internal/db"
)

// RPush appends values to a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	cmd := s.b().Rpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	return nil
}

// LRange returns list elements between start and stop (inclusive, negative from the end).
// A missing key yields an empty slice.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return vals, nil
}

// Expire sets TTL on a key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	cmd := s.b().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}

// ReplaceList swaps the whole list under key inside MULTI/EXEC, so readers never
// observe a half-written list.
func (s *Store) ReplaceList(ctx context.Context, key string, values []string, ttl time.Duration) error {
	cmds := make(rueidis.Commands, 0, 5)
	cmds = append(cmds,
		s.b().Multi().Build(),
		s.b().Del().Key(key).Build(),
	)
	if len(values) > 0 {
		cmds = append(cmds, s.b().Rpush().Key(key).Element(values...).Build())
	}
	cmds = append(cmds,
		s.b().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build(),
		s.b().Exec().Build(),
	)

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpMulti, Err: fmt.Errorf("replace %s (cmd %d): %w", key, i, err)}
		}
	}
	return nil
}
