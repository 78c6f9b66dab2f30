package secret

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/db"
	"github.com/kailas-cloud/semantle/internal/domain"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu          sync.Mutex
	byDate      map[string]domain.Assignment
	clues       map[string][]string
	byDateCalls int
	insertErr   error
}

func newMemRepo() *memRepo {
	return &memRepo{byDate: map[string]domain.Assignment{}, clues: map[string][]string{}}
}

func (m *memRepo) InsertSecret(_ context.Context, a domain.Assignment, clues []string, replace bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	key := domain.FormatDate(a.Date)
	for k, prev := range m.byDate {
		if prev.Word != a.Word && k != key {
			continue
		}
		if !replace {
			return db.ErrKeyExists
		}
		if prev.Word == a.Word && k == key {
			a.SolverCount = prev.SolverCount
		}
		delete(m.byDate, k)
		delete(m.clues, k)
	}
	m.byDate[key] = a
	m.clues[key] = clues
	return nil
}

func (m *memRepo) SecretByDate(_ context.Context, date time.Time) (domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byDateCalls++
	a, ok := m.byDate[domain.FormatDate(date)]
	if !ok {
		return domain.Assignment{}, db.ErrKeyNotFound
	}
	return a, nil
}

func (m *memRepo) SecretByWord(_ context.Context, word string) (domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byDate {
		if a.Word == word {
			return a, nil
		}
	}
	return domain.Assignment{}, db.ErrKeyNotFound
}

func (m *memRepo) LatestDate(_ context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest time.Time
	for _, a := range m.byDate {
		if a.Date.After(latest) {
			latest = a.Date
		}
	}
	return latest, !latest.IsZero(), nil
}

func (m *memRepo) ListSecrets(_ context.Context, before time.Time, desc bool) ([]domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Assignment
	for _, a := range m.byDate {
		if before.IsZero() || a.Date.Before(before) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *memRepo) IncrementSolverCount(_ context.Context, date time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.FormatDate(date)
	a, ok := m.byDate[key]
	if !ok {
		return 0, db.ErrKeyNotFound
	}
	a.SolverCount++
	m.byDate[key] = a
	return a.SolverCount, nil
}

func (m *memRepo) Clues(_ context.Context, date time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clues[domain.FormatDate(date)], nil
}

type setVocab map[string]bool

func (v setVocab) Contains(word string) bool { return v[word] }

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	vocab := setVocab{"אבא": true, "אמא": true, "בית": true}
	return New(repo, vocab, 50, zap.NewNop()), repo
}

func date(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}

// gatedRepo reads from memRepo, then holds its first SecretByDate answer until release is closed.
type gatedRepo struct {
	*memRepo
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedRepo(m *memRepo) *gatedRepo {
	return &gatedRepo{memRepo: m, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedRepo) SecretByDate(ctx context.Context, date time.Time) (domain.Assignment, error) {
	a, err := g.memRepo.SecretByDate(ctx, date)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		select {
		case <-g.release:
		case <-ctx.Done():
			return domain.Assignment{}, ctx.Err()
		}
	}
	return a, err
}
