// Package ranking persists proximity rankings as KV lists with a TTL.
package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/semantle/internal/domain"
)

var rankingKeyPrefix = domain.KeyPrefix + "rank:"

// store is the consumer interface for ranking persistence (ISP).
type store interface {
	ReplaceList(ctx context.Context, key string, values []string, ttl time.Duration) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores one list per (secret, date), ascending by similarity.
type Repo struct {
	store store
}

// New creates a ranking repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Key returns semantle:rank:{secret}:{YYYY-MM-DD}.
func Key(secret string, date time.Time) string {
	return rankingKeyPrefix + secret + ":" + domain.FormatDate(date)
}

// Save replaces the stored ranking and sets its expiry.
func (r *Repo) Save(ctx context.Context, secret string, date time.Time, words []string, ttl time.Duration) error {
	key := Key(secret, date)
	if err := r.store.ReplaceList(ctx, key, words, ttl); err != nil {
		return fmt.Errorf("save ranking %s: %w", key, err)
	}
	return nil
}

// Load returns the stored ranking; a missing key yields an empty slice.
func (r *Repo) Load(ctx context.Context, secret string, date time.Time) ([]string, error) {
	key := Key(secret, date)
	words, err := r.store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("load ranking %s: %w", key, err)
	}
	return words, nil
}

// Keys lists every stored ranking key.
func (r *Repo) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, rankingKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan rankings: %w", err)
	}
	return keys, nil
}
