package chi

import (
	"context"
	"time"

	"github.com/kailas-cloud/semantle/internal/domain"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
	gameuc "github.com/kailas-cloud/semantle/internal/usecase/game"
	healthuc "github.com/kailas-cloud/semantle/internal/usecase/health"
)

// Game is the player-facing game facade.
type Game interface {
	Today(now time.Time) time.Time
	Distance(ctx context.Context, guess string, date time.Time) (domain.Score, error)
	Closest(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error)
	Summary(ctx context.Context, date time.Time) (gameuc.Summary, error)
}

// Admin is the secret scheduling workflow.
type Admin interface {
	Preview(ctx context.Context, candidate string, force bool) (adminuc.Preview, error)
	Commit(ctx context.Context, secret string, clues []string, force bool) (time.Time, error)
	Secrets(ctx context.Context, includeFuture bool) ([]domain.Assignment, error)
	Candidates(ctx context.Context, n, topSample int) ([]string, error)
	DayStats(ctx context.Context, date time.Time) (adminuc.DayStats, error)
}

// Limiter decides whether a client is over its request budget.
type Limiter interface {
	Limited(key string) bool
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
