package ranking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/domain/vector"
	"github.com/kailas-cloud/semantle/internal/vocab"
)

// memRepo is an in-memory Repository. When release is set, Load signals
// started and then blocks until release is closed or its ctx is done.
type memRepo struct {
	mu        sync.Mutex
	lists     map[string][]string
	ttls      map[string]time.Duration
	loadCalls int
	saveErr   error
	started   chan struct{}
	release   chan struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{lists: map[string][]string{}, ttls: map[string]time.Duration{}}
}

func repoKey(secret string, date time.Time) string {
	return secret + ":" + domain.FormatDate(date)
}

func (m *memRepo) Save(_ context.Context, secret string, date time.Time, words []string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.lists[repoKey(secret, date)] = append([]string(nil), words...)
	m.ttls[repoKey(secret, date)] = ttl
	return nil
}

func (m *memRepo) Load(ctx context.Context, secret string, date time.Time) ([]string, error) {
	m.mu.Lock()
	m.loadCalls++
	words := m.lists[repoKey(secret, date)]
	m.mu.Unlock()

	if m.release != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return words, nil
}

// gate makes Load block until the returned release func is called.
func (m *memRepo) gate() func() {
	m.started = make(chan struct{}, 1)
	m.release = make(chan struct{})
	return func() { close(m.release) }
}

func (m *memRepo) loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// mockRegistry records assignments.
type mockRegistry struct {
	validateFn func(ctx context.Context, word string, date time.Time) error
	assigned   map[string]string
	assignErr  error
}

func (m *mockRegistry) Validate(ctx context.Context, word string, date time.Time) error {
	if m.validateFn != nil {
		return m.validateFn(ctx, word, date)
	}
	return nil
}

func (m *mockRegistry) Assign(_ context.Context, word string, date time.Time, _ []string, _ bool) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	if m.assigned == nil {
		m.assigned = map[string]string{}
	}
	m.assigned[domain.FormatDate(date)] = word
	return nil
}

// threeWords is the {א, ב, ג} vocabulary. Single letters need AcceptAll.
func threeWords(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New([]vocab.Entry{
		{Word: "א", Vector: []float32{1, 0}},
		{Word: "ב", Vector: []float32{0.99, 0.01}},
		{Word: "ג", Vector: []float32{0, 1}},
	}, vector.AcceptAll)
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	return v
}

// gridVocab builds n words spread over a quarter circle, so similarity to w0 decreases with index.
func gridVocab(t *testing.T, n int) *vocab.Vocabulary {
	t.Helper()
	entries := make([]vocab.Entry, n)
	for i := range n {
		x := float32(n - i)
		y := float32(i)
		entries[i] = vocab.Entry{Word: fmt.Sprintf("w%04d", i), Vector: []float32{x, y}}
	}
	v, err := vocab.New(entries, vector.AcceptAll)
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	return v
}

var (
	testDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, v Vocabulary, k int) (*Service, *memRepo, *mockRegistry) {
	t.Helper()
	repo := newMemRepo()
	reg := &mockRegistry{}
	svc := New(v, repo, reg, Config{Size: k}, zap.NewNop()).
		WithClock(func() time.Time { return testNow })
	return svc, repo, reg
}
