package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/domain/vector"
	"github.com/kailas-cloud/semantle/internal/vocab"
)

type mockSecrets struct {
	mu      sync.Mutex
	secrets map[string]string
	solvers int
	getErr  error
}

func (m *mockSecrets) Get(_ context.Context, date time.Time) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	w, ok := m.secrets[domain.FormatDate(date)]
	if !ok {
		return "", domain.ErrNoSecret
	}
	return w, nil
}

func (m *mockSecrets) IncrementSolverCount(context.Context, time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solvers++
	return m.solvers, nil
}

// staticRanking serves one fixed ranking for every date.
type staticRanking struct {
	words  []string
	getErr error
}

func (r *staticRanking) Get(context.Context, string, time.Time) ([]string, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.words, nil
}

func (r *staticRanking) Rank(_ context.Context, word, _ string, _ time.Time) (int, error) {
	if r.getErr != nil {
		return 0, r.getErr
	}
	for i, w := range r.words {
		if w == word {
			return i + 1, nil
		}
	}
	return domain.Unranked, nil
}

func (r *staticRanking) Size() int { return len(r.words) }

var (
	today     = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	firstDate = time.Date(2022, 2, 21, 0, 0, 0, 0, time.UTC)
)

func testVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New([]vocab.Entry{
		{Word: "אבא", Vector: []float32{1, 0}},
		{Word: "אמא", Vector: []float32{0.99, 0.01}},
		{Word: "בית", Vector: []float32{0.6, 0.4}},
		{Word: "גן", Vector: []float32{0, 1}},
	}, vector.HebrewFilter)
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	return v
}

func newTestService(t *testing.T) (*Service, *mockSecrets, *staticRanking) {
	t.Helper()
	secrets := &mockSecrets{secrets: map[string]string{
		domain.FormatDate(today):                   "אבא",
		domain.FormatDate(today.AddDate(0, 0, -1)): "גן",
	}}
	// Ascending: בית (≈83), אמא (99.99), אבא (secret).
	rk := &staticRanking{words: []string{"בית", "אמא", "אבא"}}
	cfg := Config{
		FirstDate:  firstDate,
		EasterEggs: map[string]string{"שלום עולם": "hello"},
	}
	return New(secrets, rk, testVocab(t), cfg, zap.NewNop()), secrets, rk
}
