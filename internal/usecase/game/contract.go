package game

import (
	"context"
	"time"
)

// Secrets resolves the secret of a date and counts its solvers.
type Secrets interface {
	Get(ctx context.Context, date time.Time) (string, error)
	IncrementSolverCount(ctx context.Context, date time.Time) (int, error)
}

// Ranking serves committed proximity rankings.
type Ranking interface {
	Get(ctx context.Context, secret string, date time.Time) ([]string, error)
	Rank(ctx context.Context, word, secret string, date time.Time) (int, error)
	Size() int
}

// Vocabulary scores words against each other.
type Vocabulary interface {
	Vector(word string) ([]float32, bool)
	Similarity(a, b []float32) float64
	Similarities(vec []float32, words []string) map[string]float64
}
