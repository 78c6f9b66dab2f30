package admin

import (
	"context"
	"time"

	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/usecase/secret"
)

// Secrets is the registry view the admin flow needs.
type Secrets interface {
	NextOpenDate(ctx context.Context, today time.Time) (time.Time, error)
	List(ctx context.Context, includeFuture bool, today time.Time, order secret.Order) ([]domain.Assignment, error)
	Assignment(ctx context.Context, date time.Time) (domain.Assignment, error)
	Clues(ctx context.Context, date time.Time) ([]string, error)
}

// Ranking stages and commits proximity rankings.
type Ranking interface {
	Preview(ctx context.Context, secret string, date time.Time, force bool) ([]string, error)
	Populate(ctx context.Context, secret string, date time.Time, clues []string, force bool) error
	StoredSize(ctx context.Context, secret string, date time.Time) (int, error)
	Size() int
}

// Vocabulary lists words in frequency order.
type Vocabulary interface {
	Head(n int) []string
}

// Calendar maps wall time to game dates.
type Calendar interface {
	Today(now time.Time) time.Time
	GameNumber(date time.Time) int
}
