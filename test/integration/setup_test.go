//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	redisContainer "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sp3dr4/relink/migrations"
)

// Containers are shared by every test in the package and torn down in
// TestMain.
var (
	sharedPostgres *postgresContainer.PostgresContainer
	sharedRedis    *redisContainer.RedisContainer
	sharedDB       *sqlx.DB
	sharedClient   *redis.Client
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	if err := startContainers(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start containers: %v\n", err)
		stopContainers(ctx)
		os.Exit(1)
	}

	code := m.Run()

	stopContainers(ctx)
	os.Exit(code)
}

func startContainers(ctx context.Context) error {
	pg, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("relink_test"),
		postgresContainer.WithUsername("test"),
		postgresContainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return fmt.Errorf("postgres container: %w", err)
	}
	sharedPostgres = pg

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("postgres connection string: %w", err)
	}

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	sharedDB = db

	if err := migrations.Up(db.DB, "postgres"); err != nil {
		return err
	}

	rc, err := redisContainer.Run(ctx, "redis:7-alpine")
	if err != nil {
		return fmt.Errorf("redis container: %w", err)
	}
	sharedRedis = rc

	uri, err := rc.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("redis connection string: %w", err)
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	sharedClient = redis.NewClient(opts)

	return nil
}

func stopContainers(ctx context.Context) {
	if sharedClient != nil {
		_ = sharedClient.Close()
	}
	if sharedDB != nil {
		_ = sharedDB.Close()
	}
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
	}
	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
	}
}

// cleanStores empties both backends to keep tests isolated.
func cleanStores(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := sharedDB.ExecContext(ctx, "TRUNCATE TABLE sessions"); err != nil {
		t.Fatalf("failed to clean sessions table: %v", err)
	}
	if err := sharedClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
