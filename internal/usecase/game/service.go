// Package game scores guesses against the secret of the day.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/metrics"
)

// EggSimilarity is reported for easter-egg phrases.
const EggSimilarity = 99.99

// MaxGuessLen bounds a guess in runes.
const MaxGuessLen = 24

// Config holds the calendar and easter eggs of a deployment.
type Config struct {
	FirstDate  time.Time         // day of game #1
	DayOffset  int               // days the game calendar lags the UTC calendar
	EasterEggs map[string]string // phrase -> egg text
}

// Summary is the headline of a day: how close the nearest words get.
type Summary struct {
	Date            time.Time
	GameNumber      int
	Nearest         float64 // nearest neighbour of the secret
	Tenth           float64 // 10th nearest
	Last            float64 // last word of the ranking
	YesterdaySecret string
}

// Service is the game facade: date -> secret -> similarity -> rank.
type Service struct {
	secrets Secrets
	ranking Ranking
	vocab   Vocabulary
	cfg     Config
	logger  *zap.Logger
}

// New creates the game facade.
func New(secrets Secrets, ranking Ranking, vocab Vocabulary, cfg Config, logger *zap.Logger) *Service {
	cfg.FirstDate = domain.Day(cfg.FirstDate)
	return &Service{
		secrets: secrets,
		ranking: ranking,
		vocab:   vocab,
		cfg:     cfg,
		logger:  logger,
	}
}

// DayOffset returns the number of days between gameDate and now, so that a
// deployment can be pinned to replay gameDate as "today".
func DayOffset(gameDate, now time.Time) int {
	if gameDate.IsZero() {
		return 0
	}
	return int(domain.Day(now).Sub(domain.Day(gameDate)).Hours() / 24)
}

// Today returns the current game date.
func (s *Service) Today(now time.Time) time.Time {
	return domain.Day(now).AddDate(0, 0, -s.cfg.DayOffset)
}

// GameNumber returns the 1-based number of the game played on date.
func (s *Service) GameNumber(date time.Time) int {
	return int(domain.Day(date).Sub(s.cfg.FirstDate).Hours()/24) + 1
}

// NormalizeGuess trims whitespace and drops apostrophes (geresh typed as ').
func NormalizeGuess(guess string) (string, error) {
	guess = strings.TrimSpace(strings.ReplaceAll(guess, "'", ""))
	if guess == "" || utf8.RuneCountInString(guess) > MaxGuessLen {
		return "", fmt.Errorf("%q: %w", guess, domain.ErrInvalidGuess)
	}
	return guess, nil
}

// Distance scores guess against the secret of date. A guess outside the
// vocabulary is not an error: the score comes back with Known=false.
// Hitting the secret itself bumps and returns the solver count.
func (s *Service) Distance(ctx context.Context, guess string, date time.Time) (domain.Score, error) {
	guess, err := NormalizeGuess(guess)
	if err != nil {
		return domain.Score{}, err
	}

	if egg, ok := s.cfg.EasterEggs[guess]; ok {
		metrics.GuessesTotal.WithLabelValues("egg").Inc()
		return domain.Score{Guess: guess, Similarity: EggSimilarity, Known: true, Rank: domain.Unranked, Egg: egg}, nil
	}

	secret, secretVec, err := s.secret(ctx, date)
	if err != nil {
		return domain.Score{}, err
	}

	guessVec, err := s.vector(guess)
	if errors.Is(err, domain.ErrUnknownWord) {
		metrics.GuessesTotal.WithLabelValues("unknown").Inc()
		return domain.Score{Guess: guess, Rank: domain.Unranked}, nil
	}

	score := domain.Score{
		Guess:      guess,
		Similarity: s.vocab.Similarity(secretVec, guessVec),
		Known:      true,
	}
	score.Rank, err = s.ranking.Rank(ctx, guess, secret, date)
	if err != nil {
		return domain.Score{}, fmt.Errorf("rank guess: %w", err)
	}

	switch {
	case score.Rank == s.ranking.Size():
		n, err := s.secrets.IncrementSolverCount(ctx, date)
		if err != nil {
			return domain.Score{}, fmt.Errorf("count solver: %w", err)
		}
		score.SolverCount = &n
		metrics.GuessesTotal.WithLabelValues("solved").Inc()
	case score.Ranked():
		metrics.GuessesTotal.WithLabelValues("ranked").Inc()
	default:
		metrics.GuessesTotal.WithLabelValues("unranked").Inc()
	}
	return score, nil
}

// Closest returns the n nearest ranking words of date, nearest first.
func (s *Service) Closest(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error) {
	secret, secretVec, err := s.secret(ctx, date)
	if err != nil {
		return nil, err
	}
	words, err := s.ranking.Get(ctx, secret, date)
	if err != nil {
		return nil, fmt.Errorf("closest words: %w", err)
	}
	if n <= 0 || n > len(words) {
		n = len(words)
	}

	top := make([]string, 0, n)
	for i := len(words) - 1; i >= len(words)-n; i-- {
		top = append(top, words[i])
	}
	sims := s.vocab.Similarities(secretVec, top)

	out := make([]domain.Neighbor, len(top))
	for i, w := range top {
		out[i] = domain.Neighbor{Word: w, Similarity: sims[w], Rank: len(words) - i}
	}
	return out, nil
}

// Summary reports the similarity of the nearest, 10th nearest and last ranking
// words for date, plus yesterday's secret when there was one.
func (s *Service) Summary(ctx context.Context, date time.Time) (Summary, error) {
	secret, secretVec, err := s.secret(ctx, date)
	if err != nil {
		return Summary{}, err
	}
	words, err := s.ranking.Get(ctx, secret, date)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}

	k := len(words)
	pick := func(i int) string {
		if i < 0 {
			i = 0
		}
		return words[i]
	}
	nearest, tenth, last := pick(k-2), pick(k-11), words[0]
	sims := s.vocab.Similarities(secretVec, []string{nearest, tenth, last})

	sum := Summary{
		Date:       domain.Day(date),
		GameNumber: s.GameNumber(date),
		Nearest:    sims[nearest],
		Tenth:      sims[tenth],
		Last:       sims[last],
	}

	yesterday, err := s.secrets.Get(ctx, date.AddDate(0, 0, -1))
	switch {
	case err == nil:
		sum.YesterdaySecret = yesterday
	case errors.Is(err, domain.ErrNoSecret):
	default:
		s.logger.Warn("Failed to resolve yesterday's secret", zap.Error(err))
	}
	return sum, nil
}

// vector looks up word; filtered and absent words are domain.ErrUnknownWord.
func (s *Service) vector(word string) ([]float32, error) {
	vec, ok := s.vocab.Vector(word)
	if !ok {
		return nil, fmt.Errorf("%q: %w", word, domain.ErrUnknownWord)
	}
	return vec, nil
}

func (s *Service) secret(ctx context.Context, date time.Time) (string, []float32, error) {
	secret, err := s.secrets.Get(ctx, date)
	if err != nil {
		return "", nil, fmt.Errorf("resolve secret: %w", err)
	}
	vec, ok := s.vocab.Vector(secret)
	if !ok {
		s.logger.Error("Secret missing from vocabulary", zap.String("date", domain.FormatDate(date)))
		return "", nil, fmt.Errorf("secret of %s: %w", domain.FormatDate(date), domain.ErrNotInVocabulary)
	}
	return secret, vec, nil
}
