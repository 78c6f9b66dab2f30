package secret

import (
	"context"
	"time"

	"github.com/kailas-cloud/semantle/internal/domain"
)

// Repository defines the storage contract for secret assignments.
type Repository interface {
	InsertSecret(ctx context.Context, a domain.Assignment, clues []string, replace bool) error
	SecretByDate(ctx context.Context, date time.Time) (domain.Assignment, error)
	SecretByWord(ctx context.Context, word string) (domain.Assignment, error)
	LatestDate(ctx context.Context) (time.Time, bool, error)
	ListSecrets(ctx context.Context, before time.Time, desc bool) ([]domain.Assignment, error)
	IncrementSolverCount(ctx context.Context, date time.Time) (int, error)
	Clues(ctx context.Context, date time.Time) ([]string, error)
}

// Vocabulary answers whether a word can be a secret.
type Vocabulary interface {
	Contains(word string) bool
}
