package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process
// event bus.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// QueueConfig tunes the round queue.
type QueueConfig struct {
	DefaultGamesPerRound int           `yaml:"default_games_per_round"`
	AutoConsolidate      bool          `yaml:"auto_consolidate"`
	AssignToCurrent      bool          `yaml:"assign_to_current"`
	ArchiveRetention     time.Duration `yaml:"archive_retention"`
	PurgeInterval        time.Duration `yaml:"purge_interval"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
}

// LoadConfig loads a .env file when present, then the YAML file, then
// environment overrides. A missing YAML file leaves the environment as the
// only source.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWT.Issuer = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		cfg.JWT.Audience = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %w", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("QUEUE_DEFAULT_GAMES_PER_ROUND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_DEFAULT_GAMES_PER_ROUND value: %w", err)
		}
		cfg.Queue.DefaultGamesPerRound = n
	}
	if v := os.Getenv("QUEUE_AUTO_CONSOLIDATE"); v != "" {
		cfg.Queue.AutoConsolidate = v == "true"
	}
	if v := os.Getenv("QUEUE_ASSIGN_TO_CURRENT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_ASSIGN_TO_CURRENT value: %w", err)
		}
		cfg.Queue.AssignToCurrent = b
	}
	if v := os.Getenv("QUEUE_ARCHIVE_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_ARCHIVE_RETENTION value: %w", err)
		}
		cfg.Queue.ArchiveRetention = d
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = 10
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = 20
	}
	if c.JWT.DefaultTTL <= 0 {
		c.JWT.DefaultTTL = 24 * time.Hour
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "antrian"
	}
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "antrian"
	}
	if c.Queue.DefaultGamesPerRound <= 0 {
		c.Queue.DefaultGamesPerRound = 4
	}
	if c.Queue.PurgeInterval <= 0 {
		c.Queue.PurgeInterval = time.Hour
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "antrian"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "production"
	}
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn (DATABASE_URL) is required"))
	}
	if len(c.JWT.Secret) < 16 {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) must be at least 16 characters"))
	}
	if c.Queue.ArchiveRetention < 0 {
		errs = append(errs, errors.New("queue.archive_retention must not be negative"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
