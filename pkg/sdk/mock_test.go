package semantle

import (
	"context"
	"time"

	"github.com/kailas-cloud/semantle/internal/domain"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
	gameuc "github.com/kailas-cloud/semantle/internal/usecase/game"
	healthuc "github.com/kailas-cloud/semantle/internal/usecase/health"
)

var fakeToday = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// --- gameUseCase mock ---

type mockGameUC struct {
	distanceFn func(ctx context.Context, guess string, date time.Time) (domain.Score, error)
	closestFn  func(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error)
	summaryFn  func(ctx context.Context, date time.Time) (gameuc.Summary, error)
}

func (m *mockGameUC) Today(time.Time) time.Time { return fakeToday }

func (m *mockGameUC) Distance(ctx context.Context, guess string, date time.Time) (domain.Score, error) {
	return m.distanceFn(ctx, guess, date)
}

func (m *mockGameUC) Closest(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error) {
	return m.closestFn(ctx, date, n)
}

func (m *mockGameUC) Summary(ctx context.Context, date time.Time) (gameuc.Summary, error) {
	return m.summaryFn(ctx, date)
}

// --- adminUseCase mock ---

type mockAdminUC struct {
	previewFn func(ctx context.Context, candidate string, force bool) (adminuc.Preview, error)
	commitFn  func(ctx context.Context, secret string, clues []string, force bool) (time.Time, error)
}

func (m *mockAdminUC) Preview(ctx context.Context, candidate string, force bool) (adminuc.Preview, error) {
	return m.previewFn(ctx, candidate, force)
}

func (m *mockAdminUC) Commit(ctx context.Context, secret string, clues []string, force bool) (time.Time, error) {
	return m.commitFn(ctx, secret, clues, force)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

func newMockClient(g *mockGameUC, a *mockAdminUC) *Client {
	return &Client{
		game:  g,
		admin: a,
		healthSvc: &mockHealthUC{report: healthuc.Report{
			Status: healthuc.Degraded,
			Checks: map[string]healthuc.CheckResult{"kv": healthuc.CheckOK, "registry": healthuc.CheckError},
		}},
		now: time.Now,
	}
}
