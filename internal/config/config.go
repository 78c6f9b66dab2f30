package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the semantle service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Registry RegistryConfig `yaml:"registry"`
	Model    ModelConfig    `yaml:"model"`
	Game     GameConfig     `yaml:"game"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	AdminKeys []string `yaml:"admin_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds KV store connection settings (rankings, vectors).
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RegistryConfig holds the secret registry (SQLite) settings.
type RegistryConfig struct {
	DSN     string `yaml:"dsn"`
	MemoMax int    `yaml:"memo_max_dates"`
}

// ModelConfig selects where word vectors come from.
type ModelConfig struct {
	Source          string `yaml:"source"` // file, redis
	Path            string `yaml:"path"`   // word2vec text file, for source=file and import
	Filter          string `yaml:"filter"` // hebrew, any
	ImportBatchSize int    `yaml:"import_batch_size"`
}

// GameConfig holds the game calendar and ranking settings.
type GameConfig struct {
	FirstDate       string            `yaml:"first_date"` // YYYY-MM-DD of game #1
	GameDate        string            `yaml:"game_date"`  // pin "today" to this date (optional)
	RankingSize     int               `yaml:"ranking_size"`
	GraceDays       int               `yaml:"grace_days"`
	MirrorMaxDates  int               `yaml:"mirror_max_dates"`
	CandidateSample int               `yaml:"candidate_sample"`
	EasterEggs      map[string]string `yaml:"easter_eggs"`
}

// ThrottleConfig holds the guess rate limit.
type ThrottleConfig struct {
	Limit     int `yaml:"limit"`
	PeriodSec int `yaml:"period_sec"`
}

// Period returns the throttle window length.
func (t ThrottleConfig) Period() time.Duration {
	return time.Duration(t.PeriodSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the environment first.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Registry.DSN == "" {
		c.Registry.DSN = "semantle.db"
	}
	if c.Registry.MemoMax <= 0 {
		c.Registry.MemoMax = 50
	}
	if c.Model.Source == "" {
		c.Model.Source = "redis"
	}
	if c.Model.Filter == "" {
		c.Model.Filter = "hebrew"
	}
	if c.Model.ImportBatchSize <= 0 {
		c.Model.ImportBatchSize = 5000
	}
	if c.Game.FirstDate == "" {
		c.Game.FirstDate = "2022-02-21"
	}
	if c.Game.RankingSize <= 0 {
		c.Game.RankingSize = 1000
	}
	if c.Game.GraceDays <= 0 {
		c.Game.GraceDays = 4
	}
	if c.Game.MirrorMaxDates <= 0 {
		c.Game.MirrorMaxDates = 50
	}
	if c.Game.CandidateSample <= 0 {
		c.Game.CandidateSample = 10000
	}
	if c.Throttle.Limit <= 0 {
		c.Throttle.Limit = 10
	}
	if c.Throttle.PeriodSec <= 0 {
		c.Throttle.PeriodSec = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	switch c.Model.Source {
	case "redis":
	case "file":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required when model.source is \"file\"")
		}
	default:
		return fmt.Errorf("model.source must be \"file\" or \"redis\", got %q", c.Model.Source)
	}
	switch c.Model.Filter {
	case "hebrew", "any":
	default:
		return fmt.Errorf("model.filter must be \"hebrew\" or \"any\", got %q", c.Model.Filter)
	}
	if _, err := time.Parse(time.DateOnly, c.Game.FirstDate); err != nil {
		return fmt.Errorf("game.first_date: %w", err)
	}
	if c.Game.GameDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Game.GameDate); err != nil {
			return fmt.Errorf("game.game_date: %w", err)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
