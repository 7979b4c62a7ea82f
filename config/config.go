package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	History   HistoryConfig   `mapstructure:"history"`
	Shortener ShortenerConfig `mapstructure:"shortener"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port" validate:"required"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

type SessionConfig struct {
	Backend      string         `mapstructure:"backend" validate:"oneof=memory redis sqlite postgres"`
	TTL          time.Duration  `mapstructure:"ttl" validate:"gt=0"`
	CookieName   string         `mapstructure:"cookie_name" validate:"required"`
	CookieSecure bool           `mapstructure:"cookie_secure"`
	SQLite       SQLiteConfig   `mapstructure:"sqlite"`
	Postgres     PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type HistoryConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

type ShortenerConfig struct {
	Providers      []string      `mapstructure:"providers" validate:"dive,oneof=tinyurl isgd dagd clckru"`
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=1"`
	Backoff        time.Duration `mapstructure:"backoff" validate:"gte=0"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	FallbackPrefix string        `mapstructure:"fallback_prefix" validate:"required"`
	UserAgent      string        `mapstructure:"user_agent"`
	CacheEnabled   bool          `mapstructure:"cache_enabled"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Path           string `mapstructure:"path"`
	Namespace      string `mapstructure:"namespace"`
	Subsystem      string `mapstructure:"subsystem"`
	CollectRuntime bool   `mapstructure:"collect_runtime"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/relink/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookie_name", "relink_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.sqlite.path", "./data/relink.db")
	v.SetDefault("session.postgres.url", "")

	v.SetDefault("history.ttl", "2h")

	v.SetDefault("shortener.providers", []string{"tinyurl", "isgd", "dagd", "clckru"})
	v.SetDefault("shortener.max_retries", 2)
	v.SetDefault("shortener.backoff", "2s")
	v.SetDefault("shortener.timeout", "10s")
	v.SetDefault("shortener.fallback_prefix", "https://relink.local/")
	v.SetDefault("shortener.user_agent", "relink/1.0")
	v.SetDefault("shortener.cache_enabled", false)
	v.SetDefault("shortener.cache_ttl", "24h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "relink")
	v.SetDefault("metrics.subsystem", "shortener")
	v.SetDefault("metrics.collect_runtime", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks field constraints and the settings each backend needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.Session.Backend {
	case "sqlite":
		if c.Session.SQLite.Path == "" {
			return fmt.Errorf("invalid configuration: session.sqlite.path is required for the sqlite backend")
		}
	case "postgres":
		if c.Session.Postgres.URL == "" {
			return fmt.Errorf("invalid configuration: session.postgres.url is required for the postgres backend")
		}
	}

	if c.UsesRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("invalid configuration: redis.addr is required")
	}

	return nil
}

// UsesRedis reports whether any component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == "redis" || c.Shortener.CacheEnabled
}

func (c *Config) GetDatabaseURL() string {
	switch c.Session.Backend {
	case "sqlite":
		return c.Session.SQLite.Path
	case "postgres":
		return c.Session.Postgres.URL
	default:
		return ""
	}
}
