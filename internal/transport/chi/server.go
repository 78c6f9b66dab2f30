package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	healthuc "github.com/kailas-cloud/semantle/internal/usecase/health"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest      = "bad_request"
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeRateLimited     = "rate_limited"
	CodeNotReady        = "not_ready"
	CodeInternalError   = "internal_error"
	CodeValidationError = "validation_failed"
)

const (
	defaultClosestLimit = 1000
	defaultCandidates   = 45
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the game and admin HTTP API.
type Server struct {
	game          Game
	admin         Admin
	limiter       Limiter
	health        HealthChecker
	adminKeys     []string
	now           func() time.Time
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	game Game,
	admin Admin,
	limiter Limiter,
	health HealthChecker,
	adminKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		game:      game,
		admin:     admin,
		limiter:   limiter,
		health:    health,
		adminKeys: adminKeys,
		now:       time.Now,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		wordUsedHandler,
		sentinelHandler(domain.ErrInvalidGuess, http.StatusBadRequest, CodeValidationError),
		sentinelHandler(domain.ErrNotInVocabulary, http.StatusBadRequest, CodeValidationError),
		sentinelHandler(domain.ErrVocabularyTooSmall, http.StatusBadRequest, CodeValidationError),
		sentinelHandler(domain.ErrDateAssigned, http.StatusConflict, CodeConflict),
		sentinelHandler(domain.ErrRankingNotBuilt, http.StatusConflict, CodeConflict),
		sentinelHandler(domain.ErrNoSecret, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrRankingNotPopulated, http.StatusServiceUnavailable, CodeNotReady),
		sentinelHandler(domain.ErrRankingIncomplete, http.StatusServiceUnavailable, CodeNotReady),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
	}
	return s
}

// WithClock overrides the wall clock used to resolve "today".
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Routes mounts every endpoint on r. Admin routes require a Bearer key.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.With(ThrottleMiddleware(s.limiter, s.handleDomainError)).Get("/distance", s.Distance)
		r.Get("/closest", s.Closest)
		r.Get("/summary", s.Summary)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(s.adminKeys))
		r.Get("/model", s.Model)
		r.Post("/set-secret", s.SetSecret)
		r.Get("/secrets", s.Secrets)
		r.Get("/candidates", s.Candidates)
		r.Get("/stats", s.Stats)
	})
}

func (s *Server) today() time.Time {
	return s.game.Today(s.now())
}

// DistanceResponse is one scored guess.
type DistanceResponse struct {
	Guess       string   `json:"guess"`
	Similarity  *float64 `json:"similarity"`
	Distance    int      `json:"distance"`
	SolverCount *int     `json:"solver_count,omitempty"`
	Egg         string   `json:"egg,omitempty"`
}

// Distance handles GET /api/distance?word=.
// The body is a single-element list so clients can append it to their guess history.
func (s *Server) Distance(w http.ResponseWriter, r *http.Request) {
	score, err := s.game.Distance(r.Context(), r.URL.Query().Get("word"), s.today())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := DistanceResponse{
		Guess:       score.Guess,
		Distance:    score.Rank,
		SolverCount: score.SolverCount,
		Egg:         score.Egg,
	}
	if score.Known {
		sim := score.Similarity
		resp.Similarity = &sim
	}
	writeJSON(w, http.StatusOK, []DistanceResponse{resp})
}

// NeighborResponse is one ranking word.
type NeighborResponse struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
}

// Closest handles GET /api/closest?days_ago=1&limit=.
// Only past days are exposed; days_ago defaults to 1.
func (s *Server) Closest(w http.ResponseWriter, r *http.Request) {
	daysAgo, ok := intParam(w, r, "days_ago", 1)
	if !ok {
		return
	}
	if daysAgo < 1 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "days_ago must be at least 1")
		return
	}
	limit, ok := intParam(w, r, "limit", defaultClosestLimit)
	if !ok {
		return
	}

	neighbors, err := s.game.Closest(r.Context(), s.today().AddDate(0, 0, -daysAgo), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]NeighborResponse, len(neighbors))
	for i, n := range neighbors {
		items[i] = NeighborResponse{Word: n.Word, Similarity: n.Similarity, Rank: n.Rank}
	}
	writeJSON(w, http.StatusOK, items)
}

// SummaryResponse is the daily headline.
type SummaryResponse struct {
	Date            string  `json:"date"`
	GameNumber      int     `json:"game_number"`
	Closest1        float64 `json:"closest1"`
	Closest10       float64 `json:"closest10"`
	Closest1000     float64 `json:"closest1000"`
	YesterdaySecret string  `json:"yesterdays_secret,omitempty"`
}

// Summary handles GET /api/summary.
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.game.Summary(r.Context(), s.today())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		Date:            domain.FormatDate(sum.Date),
		GameNumber:      sum.GameNumber,
		Closest1:        sum.Nearest,
		Closest10:       sum.Tenth,
		Closest1000:     sum.Last,
		YesterdaySecret: sum.YesterdaySecret,
	})
}

// PreviewResponse is a dry-run ranking for the next open date.
type PreviewResponse struct {
	Date       string   `json:"date"`
	GameNumber int      `json:"game_number"`
	Data       []string `json:"data"`
}

// Model handles GET /admin/model?word=&force=.
func (s *Server) Model(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "word is required")
		return
	}
	force, ok := boolParam(w, r, "force")
	if !ok {
		return
	}

	p, err := s.admin.Preview(r.Context(), word, force)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		Date:       domain.FormatDate(p.Date),
		GameNumber: p.GameNumber,
		Data:       p.Words,
	})
}

// SetSecretRequest is the body of POST /admin/set-secret.
type SetSecretRequest struct {
	Secret string   `json:"secret"`
	Clues  []string `json:"clues"`
	Force  bool     `json:"force"`
}

// SetSecretResponse confirms a scheduled secret.
type SetSecretResponse struct {
	Secret string   `json:"secret"`
	Date   string   `json:"date"`
	Clues  []string `json:"clues"`
}

// SetSecret handles POST /admin/set-secret.
func (s *Server) SetSecret(w http.ResponseWriter, r *http.Request) {
	var req SetSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Secret == "" {
		writeError(w, http.StatusBadRequest, CodeValidationError, "secret is required")
		return
	}

	date, err := s.admin.Commit(r.Context(), req.Secret, req.Clues, req.Force)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SetSecretResponse{
		Secret: req.Secret,
		Date:   domain.FormatDate(date),
		Clues:  req.Clues,
	})
}

// AssignmentResponse is one scheduled secret.
type AssignmentResponse struct {
	Word        string `json:"word"`
	Date        string `json:"date"`
	SolverCount int    `json:"solver_count"`
}

// Secrets handles GET /admin/secrets?future=.
func (s *Server) Secrets(w http.ResponseWriter, r *http.Request) {
	future, ok := boolParam(w, r, "future")
	if !ok {
		return
	}
	list, err := s.admin.Secrets(r.Context(), future)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]AssignmentResponse, len(list))
	for i, a := range list {
		items[i] = AssignmentResponse{Word: a.Word, Date: domain.FormatDate(a.Date), SolverCount: a.SolverCount}
	}
	writeJSON(w, http.StatusOK, items)
}

// Candidates handles GET /admin/candidates?n=&top=.
func (s *Server) Candidates(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n", defaultCandidates)
	if !ok {
		return
	}
	top, ok := intParam(w, r, "top", 0)
	if !ok {
		return
	}
	words, err := s.admin.Candidates(r.Context(), n, top)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

// DayStatsResponse describes one game day.
type DayStatsResponse struct {
	Date        string `json:"date"`
	GameNumber  int    `json:"game_number"`
	Secret      string `json:"secret"`
	RankingSize int    `json:"ranking_size"`
	Complete    bool   `json:"complete"`
	Clues       int    `json:"clues"`
	SolverCount int    `json:"solver_count"`
}

// Stats handles GET /admin/stats?date=. Date defaults to today.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	date := s.today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	st, err := s.admin.DayStats(r.Context(), date)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DayStatsResponse{
		Date:        domain.FormatDate(st.Date),
		GameNumber:  st.GameNumber,
		Secret:      st.Secret,
		RankingSize: st.RankingSize,
		Complete:    st.Complete,
		Clues:       st.Clues,
		SolverCount: st.SolverCount,
	})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func boolParam(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, name+" must be a boolean")
		return false, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var wu *domain.WordUsedError
	if errors.As(err, &wu) {
		return wu.Error()
	}
	sentinels := []error{
		domain.ErrInvalidGuess,
		domain.ErrNotInVocabulary,
		domain.ErrVocabularyTooSmall,
		domain.ErrDateAssigned,
		domain.ErrRankingNotBuilt,
		domain.ErrNoSecret,
		domain.ErrRankingNotPopulated,
		domain.ErrRankingIncomplete,
		domain.ErrRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// wordUsedHandler reports the date a reused secret was played on.
func wordUsedHandler(w http.ResponseWriter, err error, msg string) bool {
	var wu *domain.WordUsedError
	if !errors.As(err, &wu) {
		return false
	}
	writeJSON(w, http.StatusConflict, map[string]any{
		"code":    CodeConflict,
		"message": msg,
		"date":    domain.FormatDate(wu.Date),
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Debug("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
