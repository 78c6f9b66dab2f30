package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
	gameuc "github.com/kailas-cloud/semantle/internal/usecase/game"
	healthuc "github.com/kailas-cloud/semantle/internal/usecase/health"
)

var testToday = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

type mockGame struct {
	distanceFn func(ctx context.Context, guess string, date time.Time) (domain.Score, error)
	closestFn  func(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error)
	summaryFn  func(ctx context.Context, date time.Time) (gameuc.Summary, error)
}

func (m *mockGame) Today(time.Time) time.Time { return testToday }

func (m *mockGame) Distance(ctx context.Context, guess string, date time.Time) (domain.Score, error) {
	return m.distanceFn(ctx, guess, date)
}

func (m *mockGame) Closest(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error) {
	return m.closestFn(ctx, date, n)
}

func (m *mockGame) Summary(ctx context.Context, date time.Time) (gameuc.Summary, error) {
	return m.summaryFn(ctx, date)
}

type mockAdmin struct {
	previewFn    func(ctx context.Context, candidate string, force bool) (adminuc.Preview, error)
	commitFn     func(ctx context.Context, secret string, clues []string, force bool) (time.Time, error)
	secretsFn    func(ctx context.Context, includeFuture bool) ([]domain.Assignment, error)
	candidatesFn func(ctx context.Context, n, topSample int) ([]string, error)
	dayStatsFn   func(ctx context.Context, date time.Time) (adminuc.DayStats, error)
}

func (m *mockAdmin) Preview(ctx context.Context, candidate string, force bool) (adminuc.Preview, error) {
	return m.previewFn(ctx, candidate, force)
}

func (m *mockAdmin) Commit(ctx context.Context, secret string, clues []string, force bool) (time.Time, error) {
	return m.commitFn(ctx, secret, clues, force)
}

func (m *mockAdmin) Secrets(ctx context.Context, includeFuture bool) ([]domain.Assignment, error) {
	return m.secretsFn(ctx, includeFuture)
}

func (m *mockAdmin) Candidates(ctx context.Context, n, topSample int) ([]string, error) {
	return m.candidatesFn(ctx, n, topSample)
}

func (m *mockAdmin) DayStats(ctx context.Context, date time.Time) (adminuc.DayStats, error) {
	return m.dayStatsFn(ctx, date)
}

type staticHealth struct{ report healthuc.Report }

func (h staticHealth) Check(context.Context) healthuc.Report { return h.report }

const testKey = "admin-key"

func newTestRouter(g *mockGame, a *mockAdmin, lim Limiter) http.Handler {
	srv := NewServer(g, a, lim, staticHealth{healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"kv": healthuc.CheckOK},
	}}, []string{testKey}, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func TestDistance_Ranked(t *testing.T) {
	g := &mockGame{distanceFn: func(_ context.Context, guess string, date time.Time) (domain.Score, error) {
		if !date.Equal(testToday) {
			t.Errorf("date = %v", date)
		}
		return domain.Score{Guess: guess, Similarity: 41.5, Known: true, Rank: 990}, nil
	}}
	rr := do(t, newTestRouter(g, &mockAdmin{}, nil), "GET", "/api/distance?word="+url.QueryEscape("שלום"), "", false)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[[]DistanceResponse](t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected one item, got %d", len(resp))
	}
	got := resp[0]
	if got.Guess != "שלום" || got.Distance != 990 || got.Similarity == nil || *got.Similarity != 41.5 {
		t.Errorf("unexpected response: %+v", got)
	}
	if got.SolverCount != nil {
		t.Error("solver count should be absent")
	}
}

func TestDistance_UnknownHasNullSimilarity(t *testing.T) {
	g := &mockGame{distanceFn: func(_ context.Context, guess string, _ time.Time) (domain.Score, error) {
		return domain.Score{Guess: guess, Rank: domain.Unranked}, nil
	}}
	rr := do(t, newTestRouter(g, &mockAdmin{}, nil), "GET", "/api/distance?word=xyz", "", false)

	if !strings.Contains(rr.Body.String(), `"similarity":null`) {
		t.Errorf("expected null similarity, got %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"distance":-1`) {
		t.Errorf("expected distance -1, got %s", rr.Body.String())
	}
}

func TestDistance_Solved(t *testing.T) {
	n := 7
	g := &mockGame{distanceFn: func(_ context.Context, guess string, _ time.Time) (domain.Score, error) {
		return domain.Score{Guess: guess, Similarity: 100, Known: true, Rank: 1000, SolverCount: &n}, nil
	}}
	rr := do(t, newTestRouter(g, &mockAdmin{}, nil), "GET", "/api/distance?word=a", "", false)

	resp := decode[[]DistanceResponse](t, rr)
	if resp[0].SolverCount == nil || *resp[0].SolverCount != 7 {
		t.Errorf("solver count = %v", resp[0].SolverCount)
	}
}

func TestDistance_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{fmt.Errorf("x: %w", domain.ErrInvalidGuess), http.StatusBadRequest, CodeValidationError},
		{fmt.Errorf("resolve secret: %w", domain.ErrNoSecret), http.StatusNotFound, CodeNotFound},
		{fmt.Errorf("rank: %w", domain.ErrRankingNotPopulated), http.StatusServiceUnavailable, CodeNotReady},
		{fmt.Errorf("rank: %w", domain.ErrRankingIncomplete), http.StatusServiceUnavailable, CodeNotReady},
		{errors.New("redis down"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			g := &mockGame{distanceFn: func(context.Context, string, time.Time) (domain.Score, error) {
				return domain.Score{}, tc.err
			}}
			rr := do(t, newTestRouter(g, &mockAdmin{}, nil), "GET", "/api/distance?word=a", "", false)
			if rr.Code != tc.want {
				t.Fatalf("status %d, want %d", rr.Code, tc.want)
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tc.code {
				t.Errorf("code %q, want %q", resp.Code, tc.code)
			}
			if tc.code == CodeInternalError && resp.Message != "internal error" {
				t.Errorf("internal message leaked: %q", resp.Message)
			}
		})
	}
}

func TestDistance_Throttled(t *testing.T) {
	g := &mockGame{distanceFn: func(_ context.Context, guess string, _ time.Time) (domain.Score, error) {
		return domain.Score{Guess: guess, Rank: domain.Unranked}, nil
	}}
	h := newTestRouter(g, &mockAdmin{}, &countingLimiter{limit: 1})

	if rr := do(t, h, "GET", "/api/distance?word=a", "", false); rr.Code != http.StatusOK {
		t.Fatalf("first: %d", rr.Code)
	}
	rr := do(t, h, "GET", "/api/distance?word=a", "", false)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second: %d", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Code != CodeRateLimited || errResp.Message != domain.ErrRateLimited.Error() {
		t.Errorf("unexpected error body: %+v", errResp)
	}
	// other endpoints are not throttled
	g.summaryFn = func(context.Context, time.Time) (gameuc.Summary, error) { return gameuc.Summary{}, nil }
	if rr := do(t, h, "GET", "/api/summary", "", false); rr.Code != http.StatusOK {
		t.Fatalf("summary: %d", rr.Code)
	}
}

func TestClosest(t *testing.T) {
	g := &mockGame{closestFn: func(_ context.Context, date time.Time, n int) ([]domain.Neighbor, error) {
		if !date.Equal(testToday.AddDate(0, 0, -2)) {
			t.Errorf("date = %v", date)
		}
		if n != 3 {
			t.Errorf("n = %d", n)
		}
		return []domain.Neighbor{{Word: "b", Similarity: 80, Rank: 999}, {Word: "c", Similarity: 70, Rank: 998}}, nil
	}}
	rr := do(t, newTestRouter(g, &mockAdmin{}, nil), "GET", "/api/closest?days_ago=2&limit=3", "", false)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	items := decode[[]NeighborResponse](t, rr)
	if len(items) != 2 || items[0].Word != "b" || items[0].Rank != 999 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestClosest_DefaultsAndValidation(t *testing.T) {
	g := &mockGame{closestFn: func(_ context.Context, date time.Time, n int) ([]domain.Neighbor, error) {
		if !date.Equal(testToday.AddDate(0, 0, -1)) || n != defaultClosestLimit {
			t.Errorf("date=%v n=%d", date, n)
		}
		return nil, nil
	}}
	h := newTestRouter(g, &mockAdmin{}, nil)

	if rr := do(t, h, "GET", "/api/closest", "", false); rr.Code != http.StatusOK {
		t.Errorf("defaults: %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/api/closest?days_ago=0", "", false); rr.Code != http.StatusBadRequest {
		t.Errorf("today must not leak: %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/api/closest?limit=abc", "", false); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit: %d", rr.Code)
	}
}

func TestSummary(t *testing.T) {
	g := &mockGame{summaryFn: func(_ context.Context, date time.Time) (gameuc.Summary, error) {
		return gameuc.Summary{
			Date: date, GameNumber: 749, Nearest: 81.2, Tenth: 60.1, Last: 25.3, YesterdaySecret: "אתמול",
		}, nil
	}}
	rr := do(t, newTestRouter(g, &mockAdmin{}, nil), "GET", "/api/summary", "", false)

	got := decode[SummaryResponse](t, rr)
	want := SummaryResponse{
		Date: "2024-03-10", GameNumber: 749, Closest1: 81.2, Closest10: 60.1, Closest1000: 25.3, YesterdaySecret: "אתמול",
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAdmin_RequiresAuth(t *testing.T) {
	h := newTestRouter(&mockGame{}, &mockAdmin{}, nil)
	for _, path := range []string{"/admin/model?word=a", "/admin/secrets", "/admin/candidates", "/admin/stats"} {
		if rr := do(t, h, "GET", path, "", false); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d", path, rr.Code)
		}
	}
	if rr := do(t, h, "POST", "/admin/set-secret", `{"secret":"a"}`, false); rr.Code != http.StatusUnauthorized {
		t.Errorf("set-secret: got %d", rr.Code)
	}
}

func TestModel(t *testing.T) {
	a := &mockAdmin{previewFn: func(_ context.Context, candidate string, force bool) (adminuc.Preview, error) {
		if candidate != "שמש" || !force {
			t.Errorf("candidate=%q force=%v", candidate, force)
		}
		return adminuc.Preview{Date: testToday, GameNumber: 10, Words: []string{"ירח", "כוכב"}}, nil
	}}
	rr := do(t, newTestRouter(&mockGame{}, a, nil), "GET", "/admin/model?force=true&word="+url.QueryEscape("שמש"), "", true)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[PreviewResponse](t, rr)
	if got.Date != "2024-03-10" || got.GameNumber != 10 || len(got.Data) != 2 || got.Data[0] != "ירח" {
		t.Errorf("unexpected preview: %+v", got)
	}
}

func TestModel_Validation(t *testing.T) {
	a := &mockAdmin{previewFn: func(context.Context, string, bool) (adminuc.Preview, error) {
		return adminuc.Preview{}, fmt.Errorf("preview: %w", domain.NewWordUsed("שמש", testToday.AddDate(0, 0, -30)))
	}}
	h := newTestRouter(&mockGame{}, a, nil)

	if rr := do(t, h, "GET", "/admin/model", "", true); rr.Code != http.StatusBadRequest {
		t.Errorf("missing word: %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/admin/model?word=a&force=maybe", "", true); rr.Code != http.StatusBadRequest {
		t.Errorf("bad force: %d", rr.Code)
	}

	rr := do(t, h, "GET", "/admin/model?word="+url.QueryEscape("שמש"), "", true)
	if rr.Code != http.StatusConflict {
		t.Fatalf("word used: %d", rr.Code)
	}
	body := decode[map[string]any](t, rr)
	if body["date"] != "2024-02-09" {
		t.Errorf("expected earlier date in body, got %v", body)
	}
}

func TestSetSecret(t *testing.T) {
	a := &mockAdmin{commitFn: func(_ context.Context, secret string, clues []string, force bool) (time.Time, error) {
		if secret != "שמש" || len(clues) != 2 || force {
			t.Errorf("secret=%q clues=%v force=%v", secret, clues, force)
		}
		return testToday.AddDate(0, 0, 1), nil
	}}
	h := newTestRouter(&mockGame{}, a, nil)

	rr := do(t, h, "POST", "/admin/set-secret", `{"secret":"שמש","clues":["חם","צהוב"]}`, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[SetSecretResponse](t, rr)
	if got.Date != "2024-03-11" || got.Secret != "שמש" {
		t.Errorf("unexpected response: %+v", got)
	}

	if rr := do(t, h, "POST", "/admin/set-secret", `{`, true); rr.Code != http.StatusBadRequest {
		t.Errorf("bad body: %d", rr.Code)
	}
	if rr := do(t, h, "POST", "/admin/set-secret", `{"clues":[]}`, true); rr.Code != http.StatusBadRequest {
		t.Errorf("missing secret: %d", rr.Code)
	}
}

func TestSetSecret_NotPreviewed(t *testing.T) {
	a := &mockAdmin{commitFn: func(context.Context, string, []string, bool) (time.Time, error) {
		return time.Time{}, fmt.Errorf("commit: %w", domain.ErrRankingNotBuilt)
	}}
	rr := do(t, newTestRouter(&mockGame{}, a, nil), "POST", "/admin/set-secret", `{"secret":"a"}`, true)
	if rr.Code != http.StatusConflict {
		t.Errorf("got %d", rr.Code)
	}
}

func TestSecrets(t *testing.T) {
	a := &mockAdmin{secretsFn: func(_ context.Context, includeFuture bool) ([]domain.Assignment, error) {
		if !includeFuture {
			t.Error("expected includeFuture")
		}
		return []domain.Assignment{{Word: "a", Date: testToday, SolverCount: 3}}, nil
	}}
	rr := do(t, newTestRouter(&mockGame{}, a, nil), "GET", "/admin/secrets?future=1", "", true)

	got := decode[[]AssignmentResponse](t, rr)
	if len(got) != 1 || got[0] != (AssignmentResponse{Word: "a", Date: "2024-03-10", SolverCount: 3}) {
		t.Errorf("unexpected: %+v", got)
	}
}

func TestCandidates(t *testing.T) {
	a := &mockAdmin{candidatesFn: func(_ context.Context, n, top int) ([]string, error) {
		if n != defaultCandidates || top != 0 {
			t.Errorf("n=%d top=%d", n, top)
		}
		return []string{"x", "y"}, nil
	}}
	rr := do(t, newTestRouter(&mockGame{}, a, nil), "GET", "/admin/candidates", "", true)

	got := decode[[]string](t, rr)
	if len(got) != 2 {
		t.Errorf("unexpected: %v", got)
	}
}

func TestStats(t *testing.T) {
	a := &mockAdmin{dayStatsFn: func(_ context.Context, date time.Time) (adminuc.DayStats, error) {
		if !date.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date = %v", date)
		}
		return adminuc.DayStats{Date: date, GameNumber: 684, Secret: "a", RankingSize: 1000, Complete: true, Clues: 3}, nil
	}}
	h := newTestRouter(&mockGame{}, a, nil)

	rr := do(t, h, "GET", "/admin/stats?date=2024-01-05", "", true)
	got := decode[DayStatsResponse](t, rr)
	if got.Date != "2024-01-05" || !got.Complete || got.RankingSize != 1000 || got.Clues != 3 {
		t.Errorf("unexpected: %+v", got)
	}

	if rr := do(t, h, "GET", "/admin/stats?date=05/01/2024", "", true); rr.Code != http.StatusBadRequest {
		t.Errorf("bad date: %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, newTestRouter(&mockGame{}, &mockAdmin{}, nil), "GET", "/health", "", false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	got := decode[HealthResponse](t, rr)
	if got.Status != "ok" || got.Checks["kv"] != "ok" {
		t.Errorf("unexpected: %+v", got)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	srv := NewServer(&mockGame{}, &mockAdmin{}, nil, staticHealth{healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"kv": healthuc.CheckError, "registry": healthuc.CheckOK},
	}}, nil, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)

	rr := do(t, r, "GET", "/health", "", false)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := do(t, newTestRouter(&mockGame{}, &mockAdmin{}, nil), "GET", "/metrics", "", false)
	if rr.Code != http.StatusOK {
		t.Errorf("status %d", rr.Code)
	}
}
