// Package admin implements the secret scheduling workflow: preview a
// candidate for the next open date, commit it, and inspect past days.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/usecase/secret"
)

// DefaultTopSample is how many of the most frequent words candidates are drawn from.
const DefaultTopSample = 10000

// Preview is a dry-run ranking for the next open date.
type Preview struct {
	Date       time.Time
	GameNumber int
	Words      []string // nearest first
}

// DayStats describes the state of one game day.
type DayStats struct {
	Date        time.Time
	GameNumber  int
	Secret      string
	RankingSize int
	Complete    bool
	Clues       int
	SolverCount int
}

// Service coordinates the admin flow.
type Service struct {
	secrets  Secrets
	ranking  Ranking
	vocab    Vocabulary
	calendar Calendar
	now      func() time.Time
	logger   *zap.Logger
}

// New creates the admin service.
func New(secrets Secrets, ranking Ranking, vocab Vocabulary, calendar Calendar, logger *zap.Logger) *Service {
	return &Service{
		secrets:  secrets,
		ranking:  ranking,
		vocab:    vocab,
		calendar: calendar,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the wall clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return s.calendar.Today(s.now())
}

// NextDate returns the date the next secret will be scheduled on.
func (s *Service) NextDate(ctx context.Context) (time.Time, error) {
	date, err := s.secrets.NextOpenDate(ctx, s.today())
	if err != nil {
		return time.Time{}, fmt.Errorf("next open date: %w", err)
	}
	return date, nil
}

// Preview builds and stages the ranking of candidate for the next open date.
func (s *Service) Preview(ctx context.Context, candidate string, force bool) (Preview, error) {
	date, err := s.NextDate(ctx)
	if err != nil {
		return Preview{}, err
	}
	return s.PreviewOn(ctx, candidate, date, force)
}

// PreviewOn builds and stages the ranking of candidate for an explicit date.
func (s *Service) PreviewOn(ctx context.Context, candidate string, date time.Time, force bool) (Preview, error) {
	date = domain.Day(date)
	words, err := s.ranking.Preview(ctx, candidate, date, force)
	if err != nil {
		return Preview{}, fmt.Errorf("preview %s: %w", domain.FormatDate(date), err)
	}
	return Preview{
		Date:       date,
		GameNumber: s.calendar.GameNumber(date),
		Words: lo.Map(words, func(_ string, i int) string {
			return words[len(words)-1-i]
		}),
	}, nil
}

// Commit assigns the previewed secret to the next open date. Returns that date.
func (s *Service) Commit(ctx context.Context, secretWord string, clues []string, force bool) (time.Time, error) {
	date, err := s.NextDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if err := s.CommitOn(ctx, secretWord, date, clues, force); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

// CommitOn assigns the previewed secret to an explicit date.
func (s *Service) CommitOn(ctx context.Context, secretWord string, date time.Time, clues []string, force bool) error {
	date = domain.Day(date)
	clues = lo.Compact(lo.Map(clues, func(c string, _ int) string { return strings.TrimSpace(c) }))
	if err := s.ranking.Populate(ctx, secretWord, date, clues, force); err != nil {
		return fmt.Errorf("commit %s: %w", domain.FormatDate(date), err)
	}
	s.logger.Info("Secret scheduled",
		zap.String("date", domain.FormatDate(date)),
		zap.Int("game", s.calendar.GameNumber(date)),
		zap.Int("clues", len(clues)),
	)
	return nil
}

// Secrets lists every assignment, newest first.
func (s *Service) Secrets(ctx context.Context, includeFuture bool) ([]domain.Assignment, error) {
	list, err := s.secrets.List(ctx, includeFuture, s.today(), secret.Descending)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Candidates draws up to n random words from the topSample most frequent
// vocabulary words that were never a secret.
func (s *Service) Candidates(ctx context.Context, n, topSample int) ([]string, error) {
	if topSample <= 0 {
		topSample = DefaultTopSample
	}
	used, err := s.secrets.List(ctx, true, s.today(), secret.Ascending)
	if err != nil {
		return nil, err
	}
	usedWords := lo.Associate(used, func(a domain.Assignment) (string, struct{}) {
		return a.Word, struct{}{}
	})

	pool := lo.Filter(lo.Uniq(s.vocab.Head(topSample)), func(w string, _ int) bool {
		_, taken := usedWords[w]
		return !taken
	})
	return lo.Samples(pool, n), nil
}

// DayStats reports the secret, ranking and solver state of date.
func (s *Service) DayStats(ctx context.Context, date time.Time) (DayStats, error) {
	date = domain.Day(date)
	a, err := s.secrets.Assignment(ctx, date)
	if err != nil {
		return DayStats{}, err
	}
	size, err := s.ranking.StoredSize(ctx, a.Word, date)
	if err != nil {
		return DayStats{}, fmt.Errorf("day stats: %w", err)
	}
	clues, err := s.secrets.Clues(ctx, date)
	if err != nil {
		return DayStats{}, fmt.Errorf("day stats: %w", err)
	}
	return DayStats{
		Date:        date,
		GameNumber:  s.calendar.GameNumber(date),
		Secret:      a.Word,
		RankingSize: size,
		Complete:    size == s.ranking.Size(),
		Clues:       len(clues),
		SolverCount: a.SolverCount,
	}, nil
}
