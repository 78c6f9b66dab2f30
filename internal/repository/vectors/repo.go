// Package vectors keeps word embeddings in the KV store so every replica can
// load the same vocabulary without shipping the model file.
package vectors

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/db"
	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/domain/vector"
	"github.com/kailas-cloud/semantle/internal/vocab"
)

var (
	vectorKeyPrefix = domain.KeyPrefix + "vec:"
	wordsKey        = domain.KeyPrefix + "vec:words"
)

// DefaultBatchSize is the number of words written or read per round-trip.
const DefaultBatchSize = 5000

// store is the consumer interface for vector storage (ISP).
type store interface {
	SetMulti(ctx context.Context, items []db.KVItem) error
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Del(ctx context.Context, key string) error
}

// Repo stores vectors as float32 little-endian blobs under semantle:vec:{word},
// plus an ordered word list that preserves frequency order.
type Repo struct {
	store     store
	batchSize int
	logger    *zap.Logger
}

// New creates a vector repository.
func New(s store, batchSize int, logger *zap.Logger) *Repo {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Repo{store: s, batchSize: batchSize, logger: logger}
}

func vectorKey(word string) string {
	return vectorKeyPrefix + word
}

// Import replaces the stored vocabulary with entries. Returns the number of words written.
func (r *Repo) Import(ctx context.Context, entries []vocab.Entry) (int, error) {
	if err := r.store.Del(ctx, wordsKey); err != nil {
		return 0, fmt.Errorf("reset word list: %w", err)
	}

	written := 0
	for start := 0; start < len(entries); start += r.batchSize {
		end := min(start+r.batchSize, len(entries))
		batch := entries[start:end]

		items := make([]db.KVItem, len(batch))
		words := make([]string, len(batch))
		for i, e := range batch {
			items[i] = db.KVItem{Key: vectorKey(e.Word), Value: vector.Encode(e.Vector)}
			words[i] = e.Word
		}

		if err := r.store.SetMulti(ctx, items); err != nil {
			return written, fmt.Errorf("write vectors %d..%d: %w", start, end, err)
		}
		if err := r.store.RPush(ctx, wordsKey, words...); err != nil {
			return written, fmt.Errorf("write word list %d..%d: %w", start, end, err)
		}
		written += len(batch)
		r.logger.Debug("imported vector batch", zap.Int("from", start), zap.Int("to", end))
	}

	r.logger.Info("vectors imported", zap.Int("words", written))
	return written, nil
}

// Load materialises the stored vocabulary, keeping only words accepted by filter.
func (r *Repo) Load(ctx context.Context, filter vector.Filter) (*vocab.Vocabulary, error) {
	words, err := r.store.LRange(ctx, wordsKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	if len(words) == 0 {
		return nil, errors.New("no vectors stored, run import-vectors first")
	}

	entries := make([]vocab.Entry, 0, len(words))
	missing := 0
	for start := 0; start < len(words); start += r.batchSize {
		end := min(start+r.batchSize, len(words))
		batch := words[start:end]

		keys := make([]string, len(batch))
		for i, w := range batch {
			keys[i] = vectorKey(w)
		}
		blobs, err := r.store.MGet(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("read vectors %d..%d: %w", start, end, err)
		}

		for i, blob := range blobs {
			if blob == nil {
				missing++
				continue
			}
			vec, err := vector.Decode(blob)
			if err != nil {
				return nil, fmt.Errorf("decode vector %q: %w", batch[i], err)
			}
			entries = append(entries, vocab.Entry{Word: batch[i], Vector: vec})
		}
	}

	if missing > 0 {
		r.logger.Warn("word list references missing vectors", zap.Int("missing", missing))
	}

	v, err := vocab.New(entries, filter)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return v, nil
}
