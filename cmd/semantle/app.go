package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/config"
	dbRedis "github.com/kailas-cloud/semantle/internal/db/redis"
	"github.com/kailas-cloud/semantle/internal/db/sqlite"
	"github.com/kailas-cloud/semantle/internal/domain"
	"github.com/kailas-cloud/semantle/internal/domain/vector"
	logpkg "github.com/kailas-cloud/semantle/internal/logger"
	rankingrepo "github.com/kailas-cloud/semantle/internal/repository/ranking"
	vectorrepo "github.com/kailas-cloud/semantle/internal/repository/vectors"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
	gameuc "github.com/kailas-cloud/semantle/internal/usecase/game"
	rankinguc "github.com/kailas-cloud/semantle/internal/usecase/ranking"
	secretuc "github.com/kailas-cloud/semantle/internal/usecase/secret"
	"github.com/kailas-cloud/semantle/internal/vocab"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	kv       *dbRedis.Store
	registry *sqlite.Store
	vocab    *vocab.Vocabulary

	rankings *rankingrepo.Repo
	secrets  *secretuc.Service
	ranking  *rankinguc.Service
	game     *gameuc.Service
	admin    *adminuc.Service
}

// bootstrap loads config, the logger and the KV connection. loggerEnv
// overrides the environment used for log formatting (empty keeps ENV).
func bootstrap(ctx context.Context, loggerEnv string) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if loggerEnv == "" {
		loggerEnv = env
	}
	logger, err := logpkg.NewLogger(loggerEnv, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	// valkey and redis speak the same protocol; one rueidis store serves both drivers.
	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}

	if err := kv.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		kv.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Strings("addrs", cfg.Database.Addrs),
	)

	return &app{env: env, cfg: cfg, logger: logger, kv: kv}, nil
}

// newApp bootstraps and wires the full game: registry, vocabulary and services.
func newApp(ctx context.Context, loggerEnv string) (*app, error) {
	a, err := bootstrap(ctx, loggerEnv)
	if err != nil {
		return nil, err
	}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	registry, err := sqlite.Open(a.cfg.Registry.DSN)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	a.registry = registry

	a.vocab, err = a.loadVocabulary(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("Vocabulary loaded",
		zap.String("source", a.cfg.Model.Source),
		zap.Int("words", a.vocab.Len()),
		zap.Int("dim", a.vocab.Dim()),
	)

	firstDate, err := domain.ParseDate(a.cfg.Game.FirstDate)
	if err != nil {
		return fmt.Errorf("game.first_date: %w", err)
	}
	var gameDate time.Time
	if a.cfg.Game.GameDate != "" {
		if gameDate, err = domain.ParseDate(a.cfg.Game.GameDate); err != nil {
			return fmt.Errorf("game.game_date: %w", err)
		}
	}

	a.rankings = rankingrepo.New(a.kv)
	a.secrets = secretuc.New(a.registry, a.vocab, a.cfg.Registry.MemoMax, a.logger)
	a.ranking = rankinguc.New(a.vocab, a.rankings, a.secrets, rankinguc.Config{
		Size:           a.cfg.Game.RankingSize,
		GraceDays:      a.cfg.Game.GraceDays,
		MirrorMaxDates: a.cfg.Game.MirrorMaxDates,
	}, a.logger)
	a.game = gameuc.New(a.secrets, a.ranking, a.vocab, gameuc.Config{
		FirstDate:  firstDate,
		DayOffset:  gameuc.DayOffset(gameDate, time.Now()),
		EasterEggs: a.cfg.Game.EasterEggs,
	}, a.logger)
	a.admin = adminuc.New(a.secrets, a.ranking, a.vocab, a.game, a.logger)
	return nil
}

func (a *app) loadVocabulary(ctx context.Context) (*vocab.Vocabulary, error) {
	filter, err := vector.FilterByName(a.cfg.Model.Filter)
	if err != nil {
		return nil, err
	}
	switch a.cfg.Model.Source {
	case "file":
		v, err := vocab.LoadFile(a.cfg.Model.Path, filter)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		return v, nil
	default:
		repo := vectorrepo.New(a.kv, a.cfg.Model.ImportBatchSize, a.logger)
		v, err := repo.Load(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		return v, nil
	}
}

func (a *app) close() {
	if a.registry != nil {
		if err := a.registry.Close(); err != nil {
			a.logger.Warn("Failed to close registry", zap.Error(err))
		}
	}
	a.kv.Close()
	_ = a.logger.Sync()
}
