package vectors

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/db"
)

// memStore is an in-memory implementation of the consumer interface.
type memStore struct {
	kv         map[string][]byte
	lists      map[string][]string
	setMultiFn func(ctx context.Context, items []db.KVItem) error
	setCalls   int
	mgetCalls  int
}

func newMemStore() *memStore {
	return &memStore{kv: map[string][]byte{}, lists: map[string][]string{}}
}

func (m *memStore) SetMulti(ctx context.Context, items []db.KVItem) error {
	m.setCalls++
	if m.setMultiFn != nil {
		return m.setMultiFn(ctx, items)
	}
	for _, it := range items {
		m.kv[it.Key] = it.Value
	}
	return nil
}

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	m.mgetCalls++
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.kv[k]
	}
	return out, nil
}

func (m *memStore) RPush(_ context.Context, key string, values ...string) error {
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *memStore) LRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	return m.lists[key], nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	delete(m.kv, key)
	delete(m.lists, key)
	return nil
}

func newTestRepo(t *testing.T, batch int) (*Repo, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(ms, batch, zap.NewNop()), ms
}
