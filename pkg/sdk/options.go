package semantle

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	registryDSN string
	vectorsPath string // empty: vocabulary is read from the KV store
	anyWords    bool

	rankingSize int
	firstDate   time.Time
	gameDate    time.Time
	easterEggs  map[string]string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRegistry sets the SQLite DSN of the secret registry. Default: semantle.db.
func WithRegistry(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.registryDSN = dsn
	})
}

// WithVectorsFile loads the vocabulary from a word2vec text file instead of the KV store.
func WithVectorsFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorsPath = path
	})
}

// WithAnyWords keeps non-Hebrew words in the vocabulary.
func WithAnyWords() Option {
	return optionFunc(func(c *clientConfig) {
		c.anyWords = true
	})
}

// WithRankingSize sets how many nearest words are ranked per day. Default: 1000.
func WithRankingSize(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rankingSize = k
	})
}

// WithFirstDate sets the date of game #1. Default: 2022-02-21.
func WithFirstDate(d time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.firstDate = d
	})
}

// WithGameDate pins "today" to d, shifting the calendar by the distance to the real date.
func WithGameDate(d time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.gameDate = d
	})
}

// WithEasterEggs maps phrases to egg texts returned instead of a score.
func WithEasterEggs(eggs map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.easterEggs = eggs
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
