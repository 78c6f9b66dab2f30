package db

import (
	"context"
	"time"
)

// Store is the main KV database facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	ListStore
	KeyStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVItem holds a single key+value pair for pipelined SET.
type KVItem struct {
	Key   string
	Value []byte
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMulti(ctx context.Context, items []KVItem) error
	// MGet returns one value per key, nil where the key is missing.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
}

// ListStore provides list operations.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// ReplaceList atomically deletes key, pushes values and sets the TTL (MULTI/EXEC).
	ReplaceList(ctx context.Context, key string, values []string, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// KeyStore provides keyspace operations.
type KeyStore interface {
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}
