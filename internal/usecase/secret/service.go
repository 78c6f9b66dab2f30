// Package secret implements the registry of daily secret words.
package secret

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/semantle/internal/cache"
	"github.com/kailas-cloud/semantle/internal/db"
	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/metrics"
)

// Order selects the date ordering of List.
type Order int

const (
	// Ascending lists oldest first.
	Ascending Order = iota
	// Descending lists newest first.
	Descending
)

// Service validates, stores and resolves secret assignments.
// Resolved secrets are memoized per date; misses are never memoized.
type Service struct {
	repo   Repository
	vocab  Vocabulary
	memo   *cache.Bounded[string, string]
	group  singleflight.Group
	logger *zap.Logger

	// mu orders memo writes; gens counts assignments per date so a lookup
	// started before an assignment never memoizes the replaced word.
	mu   sync.Mutex
	gens map[string]uint64
}

// New creates a secret registry. memoMax bounds the number of memoized dates.
func New(repo Repository, vocab Vocabulary, memoMax int, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		vocab:  vocab,
		memo:   cache.NewBounded[string, string](memoMax),
		logger: logger,
		gens:   make(map[string]uint64),
	}
}

// Get returns the secret word of a date or domain.ErrNoSecret.
func (s *Service) Get(ctx context.Context, date time.Time) (string, error) {
	key := domain.FormatDate(date)
	if word, ok := s.memo.Get(key); ok {
		return word, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		gen := s.generation(key)
		a, err := s.repo.SecretByDate(loadCtx, date)
		if err != nil {
			return "", err
		}
		s.remember(key, a.Word, gen)
		return a.Word, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("get secret %s: %w", key, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		if errors.Is(res.Err, db.ErrKeyNotFound) {
			return "", fmt.Errorf("%s: %w", key, domain.ErrNoSecret)
		}
		return "", fmt.Errorf("get secret %s: %w", key, res.Err)
	}
	return res.Val.(string), nil
}

func (s *Service) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// remember memoizes word unless key was assigned since gen was read.
func (s *Service) remember(key, word string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] != gen {
		return
	}
	s.memo.Set(key, word)
}

// Assignment returns the full assignment of a date or domain.ErrNoSecret.
func (s *Service) Assignment(ctx context.Context, date time.Time) (domain.Assignment, error) {
	a, err := s.repo.SecretByDate(ctx, date)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Assignment{}, fmt.Errorf("%s: %w", domain.FormatDate(date), domain.ErrNoSecret)
		}
		return domain.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// Validate checks that word may become the secret of date: the date is free,
// the word was never used, and the word is in the vocabulary.
func (s *Service) Validate(ctx context.Context, word string, date time.Time) error {
	if _, err := s.repo.SecretByDate(ctx, date); err == nil {
		return fmt.Errorf("%s: %w", domain.FormatDate(date), domain.ErrDateAssigned)
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("check date: %w", err)
	}

	if prev, err := s.repo.SecretByWord(ctx, word); err == nil {
		return domain.NewWordUsed(word, prev.Date)
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("check word: %w", err)
	}

	if !s.vocab.Contains(word) {
		return fmt.Errorf("%q: %w", word, domain.ErrNotInVocabulary)
	}
	return nil
}

// Assign binds word to date together with its clues. force skips validation and
// replaces whatever held the date.
func (s *Service) Assign(ctx context.Context, word string, date time.Time, clues []string, force bool) error {
	date = domain.Day(date)
	if !force {
		if err := s.Validate(ctx, word, date); err != nil {
			return err
		}
	}

	var movedFrom string
	if force {
		if prev, err := s.repo.SecretByWord(ctx, word); err == nil {
			movedFrom = domain.FormatDate(prev.Date)
		}
	}

	err := s.repo.InsertSecret(ctx, domain.Assignment{Word: word, Date: date}, clues, force)
	if err != nil {
		if errors.Is(err, db.ErrKeyExists) {
			// Lost a race with a concurrent assign; report what now blocks us.
			if vErr := s.Validate(ctx, word, date); vErr != nil {
				return vErr
			}
			return fmt.Errorf("%s: %w", domain.FormatDate(date), domain.ErrDateAssigned)
		}
		return fmt.Errorf("assign secret: %w", err)
	}

	key := domain.FormatDate(date)
	s.mu.Lock()
	s.gens[key]++
	if movedFrom != "" && movedFrom != key {
		s.gens[movedFrom]++
		s.memo.Delete(movedFrom)
	}
	s.memo.Set(key, word)
	s.mu.Unlock()
	s.group.Forget(key)

	s.logger.Info("Secret assigned",
		zap.String("date", key),
		zap.Int("clues", len(clues)),
		zap.Bool("force", force),
	)
	return nil
}

// IncrementSolverCount records one more solver for date and returns the new count.
func (s *Service) IncrementSolverCount(ctx context.Context, date time.Time) (int, error) {
	n, err := s.repo.IncrementSolverCount(ctx, date)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, fmt.Errorf("%s: %w", domain.FormatDate(date), domain.ErrNoSecret)
		}
		return 0, fmt.Errorf("increment solver count: %w", err)
	}
	metrics.SolverIncrementsTotal.Inc()
	return n, nil
}

// List returns assignments in the given order. Unless includeFuture is set,
// only dates strictly before today are returned.
func (s *Service) List(ctx context.Context, includeFuture bool, today time.Time, order Order) ([]domain.Assignment, error) {
	var before time.Time
	if !includeFuture {
		before = domain.Day(today)
	}
	list, err := s.repo.ListSecrets(ctx, before, order == Descending)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return list, nil
}

// Clues returns the clues stored with the secret of date.
func (s *Service) Clues(ctx context.Context, date time.Time) ([]string, error) {
	clues, err := s.repo.Clues(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get clues: %w", err)
	}
	return clues, nil
}

// LatestDate returns the latest assigned date; ok is false when none is assigned.
func (s *Service) LatestDate(ctx context.Context) (time.Time, bool, error) {
	latest, ok, err := s.repo.LatestDate(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest date: %w", err)
	}
	return latest, ok, nil
}

// NextOpenDate is the day after the latest assignment, or today when nothing is assigned.
func (s *Service) NextOpenDate(ctx context.Context, today time.Time) (time.Time, error) {
	latest, ok, err := s.LatestDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return domain.Day(today), nil
	}
	return latest.AddDate(0, 0, 1), nil
}
