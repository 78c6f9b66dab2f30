package ranking

import (
	"context"
	"iter"
	"time"
)

// Vocabulary is the read-only model the ranking is computed from.
type Vocabulary interface {
	Vector(word string) ([]float32, bool)
	All() iter.Seq2[string, []float32]
	Len() int
}

// Repository persists committed rankings.
type Repository interface {
	Save(ctx context.Context, secret string, date time.Time, words []string, ttl time.Duration) error
	Load(ctx context.Context, secret string, date time.Time) ([]string, error)
}

// Registry validates and records secret assignments.
type Registry interface {
	Validate(ctx context.Context, word string, date time.Time) error
	Assign(ctx context.Context, word string, date time.Time, clues []string, force bool) error
}
