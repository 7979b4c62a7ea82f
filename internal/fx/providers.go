package fx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/sp3dr4/relink/config"
	"github.com/sp3dr4/relink/internal/application"
	"github.com/sp3dr4/relink/internal/domain"
	cacheImpl "github.com/sp3dr4/relink/internal/infrastructure/cache"
	memoryStore "github.com/sp3dr4/relink/internal/infrastructure/memory"
	postgresStore "github.com/sp3dr4/relink/internal/infrastructure/postgres"
	"github.com/sp3dr4/relink/internal/infrastructure/provider"
	redisStore "github.com/sp3dr4/relink/internal/infrastructure/redis"
	sqliteStore "github.com/sp3dr4/relink/internal/infrastructure/sqlite"
	"github.com/sp3dr4/relink/internal/pkg/logging"
	"github.com/sp3dr4/relink/internal/pkg/metrics"
	"github.com/sp3dr4/relink/migrations"
)

// ProvideLogger creates and configures the application logger
func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return logger
}

// ProvideRedisClient returns nil when no component is configured to use redis.
func ProvideRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if !cfg.UsesRedis() {
		return nil
	}

	logger.Info("Using Redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideSessionStore creates the session store selected by session.backend
func ProvideSessionStore(cfg *config.Config, logger *slog.Logger, client *redis.Client) (domain.SessionStore, error) {
	switch cfg.Session.Backend {
	case "memory":
		logger.Info("Using in-memory session store")
		return memoryStore.NewSessionStore(), nil

	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis session store requires a redis client")
		}
		logger.Info("Using Redis session store")
		return redisStore.NewSessionStore(client, logger), nil

	case "sqlite":
		dbPath := cfg.GetDatabaseURL()
		logger.Info("Using SQLite session store", "path", dbPath)

		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		db, err := sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}

		if err := migrations.Up(db.DB, "sqlite3"); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Migrations completed successfully", "driver", "sqlite3")

		return sqliteStore.NewSessionStore(db), nil

	case "postgres":
		logger.Info("Using PostgreSQL session store")

		db, err := sqlx.Connect("postgres", cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}

		if err := migrations.Up(db.DB, "postgres"); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Migrations completed successfully", "driver", "postgres")

		return postgresStore.NewSessionStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Session.Backend)
	}
}

// ProvideShortenCache returns the redis backed provider cache when enabled
func ProvideShortenCache(cfg *config.Config, client *redis.Client, logger *slog.Logger) domain.ShortenCache {
	if !cfg.Shortener.CacheEnabled || client == nil {
		return cacheImpl.NewNoOpCache()
	}
	logger.Info("Provider result cache enabled", "ttl", cfg.Shortener.CacheTTL)
	return redisStore.NewShortenCache(client, logger)
}

func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Shortener.Timeout}
}

func ProvideProviders(cfg *config.Config, client *http.Client) ([]domain.Provider, error) {
	return provider.NewAll(cfg.Shortener.Providers, client, cfg.Shortener.UserAgent)
}

func ProvideShortenerOptions(cfg *config.Config) application.ShortenerOptions {
	return application.ShortenerOptions{
		MaxRetries:     cfg.Shortener.MaxRetries,
		Backoff:        cfg.Shortener.Backoff,
		FallbackPrefix: cfg.Shortener.FallbackPrefix,
		CacheTTL:       cfg.Shortener.CacheTTL,
	}
}

func ProvideHistoryService(cfg *config.Config, store domain.SessionStore, registry metrics.Registry) *application.HistoryService {
	return application.NewHistoryService(store, registry, cfg.History.TTL, cfg.Session.TTL)
}

func ProvideSubmissionService(shortener *application.ShorteningClient, history *application.HistoryService) *application.SubmissionService {
	return application.NewSubmissionService(shortener, history)
}

// ProvideMetricsRegistry returns a no-op registry when metrics are disabled
func ProvideMetricsRegistry(cfg *config.Config) (metrics.Registry, error) {
	if !cfg.Metrics.Enabled {
		return metrics.NewNoOpRegistry(), nil
	}
	return metrics.NewPrometheusRegistry(cfg.Metrics)
}

// SessionStoreParams holds the parameters needed for session store lifecycle management
type SessionStoreParams struct {
	fx.In

	Store  domain.SessionStore
	Logger *slog.Logger
}

// RegisterSessionStoreHooks registers session store lifecycle hooks with FX
func RegisterSessionStoreHooks(lc fx.Lifecycle, params SessionStoreParams) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := params.Store.Close(); err != nil {
				params.Logger.Error("Failed to close session store", "error", err)
				return err
			}
			params.Logger.Info("Session store closed successfully")
			return nil
		},
	})
}

// RedisParams holds the parameters needed for redis lifecycle management
type RedisParams struct {
	fx.In

	Client *redis.Client `optional:"true"`
	Logger *slog.Logger
}

// RegisterRedisHooks pings redis on start and closes the client on stop
func RegisterRedisHooks(lc fx.Lifecycle, params RedisParams) {
	if params.Client == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to connect to Redis: %w", err)
			}
			params.Logger.Info("Connected to Redis")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := params.Client.Close(); err != nil {
				params.Logger.Error("Failed to close Redis client", "error", err)
				return err
			}
			params.Logger.Info("Redis client closed successfully")
			return nil
		},
	})
}
