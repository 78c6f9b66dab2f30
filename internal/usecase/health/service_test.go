package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockVocab int

func (m mockVocab) Len() int { return int(m) }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockDBPinger{}, mockVocab(10))
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"kv", "registry", "vocabulary"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_KVError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockDBPinger{}, mockVocab(10))
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["kv"] != CheckError {
		t.Errorf("expected kv %q, got %q", CheckError, r.Checks["kv"])
	}
	if r.Checks["registry"] != CheckOK {
		t.Errorf("expected registry %q, got %q", CheckOK, r.Checks["registry"])
	}
}

func TestCheck_EmptyVocabulary(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockDBPinger{}, mockVocab(0))
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["vocabulary"] != CheckError {
		t.Error("expected vocabulary error")
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockDBPinger{err: errors.New("kv down")},
		&mockDBPinger{err: errors.New("db locked")},
		nil,
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if _, ok := r.Checks["vocabulary"]; ok {
		t.Error("vocabulary check should be absent when vocab is nil")
	}
}
