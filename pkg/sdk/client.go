package semantle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/semantle/internal/db/redis"
	"github.com/kailas-cloud/semantle/internal/db/sqlite"
	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/domain/vector"
	rankingrepo "github.com/kailas-cloud/semantle/internal/repository/ranking"
	vectorrepo "github.com/kailas-cloud/semantle/internal/repository/vectors"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
	gameuc "github.com/kailas-cloud/semantle/internal/usecase/game"
	healthuc "github.com/kailas-cloud/semantle/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/semantle/internal/usecase/ranking"
	secretuc "github.com/kailas-cloud/semantle/internal/usecase/secret"
	"github.com/kailas-cloud/semantle/internal/vocab"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultRegistryDSN      = "semantle.db"
	defaultFirstDate        = "2022-02-21"
)

// Internal interfaces, swapped for fakes in tests.
type gameUseCase interface {
	Today(now time.Time) time.Time
	Distance(ctx context.Context, guess string, date time.Time) (domain.Score, error)
	Closest(ctx context.Context, date time.Time, n int) ([]domain.Neighbor, error)
	Summary(ctx context.Context, date time.Time) (gameuc.Summary, error)
}

type adminUseCase interface {
	Preview(ctx context.Context, candidate string, force bool) (adminuc.Preview, error)
	Commit(ctx context.Context, secret string, clues []string, force bool) (time.Time, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type closer interface {
	Close() error
}

// Client is the semantle SDK entry point. It is safe for concurrent use.
type Client struct {
	kv        *dbRedis.Store
	registry  closer
	game      gameUseCase
	admin     adminUseCase
	healthSvc healthUseCase
	now       func() time.Time
	obs       *observer
}

// New creates a Client: connects to the KV store, opens the registry and
// loads the vocabulary. The provided context bounds the whole startup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{registryDSN: defaultRegistryDSN}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.firstDate.IsZero() {
		cfg.firstDate, _ = domain.ParseDate(defaultFirstDate)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("semantle: database address required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	kv, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("semantle: create %s store: %w", cfg.driver, err)
	}
	if err := kv.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		kv.Close()
		return nil, fmt.Errorf("semantle: database not ready: %w", err)
	}

	registry, err := sqlite.Open(cfg.registryDSN)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("semantle: open registry: %w", err)
	}

	v, err := loadVocabulary(ctx, kv, cfg)
	if err != nil {
		_ = registry.Close()
		kv.Close()
		return nil, err
	}

	c := wireClient(kv, registry, v, cfg)
	c.obs = obs
	return c, nil
}

func loadVocabulary(ctx context.Context, kv *dbRedis.Store, cfg *clientConfig) (*vocab.Vocabulary, error) {
	filter := vector.HebrewFilter
	if cfg.anyWords {
		filter = vector.AnyFilter
	}
	if cfg.vectorsPath != "" {
		v, err := vocab.LoadFile(cfg.vectorsPath, filter)
		if err != nil {
			return nil, fmt.Errorf("semantle: %w", err)
		}
		return v, nil
	}
	v, err := vectorrepo.New(kv, 0, zap.NewNop()).Load(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("semantle: %w", err)
	}
	return v, nil
}

func wireClient(kv *dbRedis.Store, registry *sqlite.Store, v *vocab.Vocabulary, cfg *clientConfig) *Client {
	// Internal services log through zap; the SDK reports through its own observer.
	nop := zap.NewNop()

	secrets := secretuc.New(registry, v, 50, nop)
	ranking := rankinguc.New(v, rankingrepo.New(kv), secrets, rankinguc.Config{Size: cfg.rankingSize}, nop)
	game := gameuc.New(secrets, ranking, v, gameuc.Config{
		FirstDate:  cfg.firstDate,
		DayOffset:  gameuc.DayOffset(cfg.gameDate, time.Now()),
		EasterEggs: cfg.easterEggs,
	}, nop)

	return &Client{
		kv:        kv,
		registry:  registry,
		game:      game,
		admin:     adminuc.New(secrets, ranking, v, game, nop),
		healthSvc: healthuc.New(kv, registry, v),
		now:       time.Now,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.registry != nil {
		_ = c.registry.Close()
	}
	if c.kv != nil {
		c.kv.Close()
	}
}

// Today returns the current game date.
func (c *Client) Today() time.Time {
	return c.game.Today(c.now())
}
