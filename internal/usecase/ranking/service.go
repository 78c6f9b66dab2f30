// Package ranking builds, stores and serves the per-day proximity ranking:
// the K vocabulary words nearest to the secret, ascending by similarity.
package ranking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/semantle/internal/cache"
	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/domain/topk"
	"github.com/kailas-cloud/semantle/internal/domain/vector"
	"github.com/kailas-cloud/semantle/internal/metrics"
)

// Defaults for Config.
const (
	DefaultGraceDays      = 4
	DefaultMirrorMaxDates = 50
	minTTL                = time.Hour
	ctxCheckEvery         = 4096
)

// Config tunes the proximity cache.
type Config struct {
	Size           int // K, words per ranking
	GraceDays      int // stored rankings expire this many days after their date
	MirrorMaxDates int // in-process mirror bound
}

func (c *Config) applyDefaults() {
	if c.Size <= 0 {
		c.Size = domain.DefaultRankingSize
	}
	if c.GraceDays <= 0 {
		c.GraceDays = DefaultGraceDays
	}
	if c.MirrorMaxDates <= 0 {
		c.MirrorMaxDates = DefaultMirrorMaxDates
	}
}

// entry is one ranking with an O(1) word -> position index.
type entry struct {
	secret string
	words  []string
	index  map[string]int
}

func newEntry(secret string, words []string) *entry {
	idx := make(map[string]int, len(words))
	for i, w := range words {
		idx[w] = i
	}
	return &entry{secret: secret, words: words, index: idx}
}

type scored struct {
	word string
	sim  float64
}

// Service is the proximity cache. Committed rankings are mirrored per date;
// previews are staged separately until Populate commits them.
type Service struct {
	vocab    Vocabulary
	repo     Repository
	registry Registry
	cfg      Config
	mirror   *cache.Bounded[string, *entry]
	staged   *cache.Bounded[string, *entry]
	group    singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a proximity cache.
func New(vocab Vocabulary, repo Repository, registry Registry, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	return &Service{
		vocab:    vocab,
		repo:     repo,
		registry: registry,
		cfg:      cfg,
		mirror:   cache.NewBounded[string, *entry](cfg.MirrorMaxDates),
		staged:   cache.NewBounded[string, *entry](cfg.MirrorMaxDates),
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the wall clock used for expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Size returns K.
func (s *Service) Size() int { return s.cfg.Size }

// Build computes the ranking of secret: K words ascending by similarity, secret last.
func (s *Service) Build(ctx context.Context, secret string) ([]string, error) {
	target, ok := s.vocab.Vector(secret)
	if !ok {
		return nil, fmt.Errorf("%q: %w", secret, domain.ErrNotInVocabulary)
	}
	if n := s.vocab.Len(); n < s.cfg.Size {
		return nil, fmt.Errorf("%d words, need %d: %w", n, s.cfg.Size, domain.ErrVocabularyTooSmall)
	}

	start := time.Now()
	sel := topk.New(s.cfg.Size, func(a, b scored) bool {
		// The secret outranks any word that rounds to the same similarity.
		if a.word == secret {
			return false
		}
		if b.word == secret {
			return true
		}
		if a.sim != b.sim {
			return a.sim < b.sim
		}
		return a.word > b.word
	})

	n := 0
	for word, vec := range s.vocab.All() {
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				metrics.RankingBuildsTotal.WithLabelValues("canceled").Inc()
				return nil, fmt.Errorf("build ranking: %w", err)
			}
		}
		sel.Push(scored{word: word, sim: vector.Similarity(target, vec)})
	}

	items := sel.Drain()
	words := make([]string, len(items))
	for i, it := range items {
		words[i] = it.word
	}

	metrics.RankingBuildDuration.Observe(time.Since(start).Seconds())
	metrics.RankingBuildsTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("Ranking built",
		zap.Int("scanned", n),
		zap.Duration("took", time.Since(start)),
	)
	return words, nil
}

// Preview validates secret for date (unless force), builds its ranking and
// stages it for a later Populate. Nothing is persisted.
func (s *Service) Preview(ctx context.Context, secret string, date time.Time, force bool) ([]string, error) {
	date = domain.Day(date)
	if !force {
		if err := s.registry.Validate(ctx, secret, date); err != nil {
			return nil, err
		}
	}
	words, err := s.Build(ctx, secret)
	if err != nil {
		return nil, err
	}
	s.staged.Set(domain.FormatDate(date), newEntry(secret, words))
	return words, nil
}

// Populate commits the staged ranking of (secret, date): the registry assignment
// first, then the stored ranking, then the mirror.
func (s *Service) Populate(ctx context.Context, secret string, date time.Time, clues []string, force bool) error {
	date = domain.Day(date)
	key := domain.FormatDate(date)

	e, ok := s.staged.Get(key)
	if !ok || e.secret != secret || len(e.words) != s.cfg.Size {
		return fmt.Errorf("%s for %s: %w", secret, key, domain.ErrRankingNotBuilt)
	}

	if err := s.registry.Assign(ctx, secret, date, clues, force); err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	ttl := s.ttl(date)
	if err := s.repo.Save(ctx, secret, date, e.words, ttl); err != nil {
		s.logger.Error("Secret assigned but ranking not stored",
			zap.String("date", key),
			zap.Error(err),
		)
		return fmt.Errorf("populate: %w", err)
	}

	s.group.Forget(key + ":" + secret)
	s.mirror.Set(key, e)
	s.staged.Delete(key)

	s.logger.Info("Ranking populated",
		zap.String("date", key),
		zap.Int("size", len(e.words)),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// Get returns the committed ranking of (secret, date).
func (s *Service) Get(ctx context.Context, secret string, date time.Time) ([]string, error) {
	e, err := s.lookup(ctx, secret, date)
	if err != nil {
		return nil, err
	}
	return e.words, nil
}

// Rank returns the 1-based position of word in the ranking, or domain.Unranked.
// The secret itself ranks K.
func (s *Service) Rank(ctx context.Context, word, secret string, date time.Time) (int, error) {
	e, err := s.lookup(ctx, secret, date)
	if err != nil {
		return 0, err
	}
	if i, ok := e.index[word]; ok {
		return i + 1, nil
	}
	return domain.Unranked, nil
}

// StoredSize returns how many words are stored for (secret, date), bypassing the mirror.
func (s *Service) StoredSize(ctx context.Context, secret string, date time.Time) (int, error) {
	words, err := s.repo.Load(ctx, secret, date)
	if err != nil {
		return 0, fmt.Errorf("load ranking: %w", err)
	}
	return len(words), nil
}

func (s *Service) lookup(ctx context.Context, secret string, date time.Time) (*entry, error) {
	key := domain.FormatDate(date)
	if e, ok := s.mirrored(key, secret); ok {
		metrics.RankingMirrorTotal.WithLabelValues("hit").Inc()
		return e, nil
	}
	metrics.RankingMirrorTotal.WithLabelValues("miss").Inc()

	// The load is shared by every caller of the date, so no single caller may cancel it.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key+":"+secret, func() (any, error) {
		if e, ok := s.mirrored(key, secret); ok {
			return e, nil
		}
		return s.load(loadCtx, key, secret, date)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load ranking: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entry), nil
	}
}

func (s *Service) mirrored(key, secret string) (*entry, bool) {
	e, ok := s.mirror.Get(key)
	if !ok || e.secret != secret || len(e.words) != s.cfg.Size {
		return nil, false
	}
	return e, true
}

func (s *Service) load(ctx context.Context, key, secret string, date time.Time) (*entry, error) {
	words, err := s.repo.Load(ctx, secret, date)
	if err != nil {
		return nil, fmt.Errorf("load ranking: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrRankingNotPopulated)
	}
	if len(words) != s.cfg.Size {
		s.logger.Error("Stored ranking has wrong size",
			zap.String("date", key),
			zap.Int("size", len(words)),
			zap.Int("expected", s.cfg.Size),
		)
		return nil, fmt.Errorf("%s has %d of %d words: %w", key, len(words), s.cfg.Size, domain.ErrRankingIncomplete)
	}
	e := newEntry(secret, words)
	if s.mirror.Set(key, e) {
		s.logger.Debug("Ranking mirror cleared", zap.Int("max_dates", s.cfg.MirrorMaxDates))
	}
	return e, nil
}

// ttl is the time until date plus the grace period, never less than an hour.
func (s *Service) ttl(date time.Time) time.Duration {
	ttl := date.AddDate(0, 0, s.cfg.GraceDays).Sub(s.now())
	if ttl < minTTL {
		return minTTL
	}
	return ttl
}
