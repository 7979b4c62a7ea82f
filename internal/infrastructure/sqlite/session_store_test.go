package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/migrations"
)

func setupStore(t *testing.T) (*SessionStore, *time.Time) {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	require.NoError(t, migrations.Up(db.DB, "sqlite3"))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(db).WithClock(func() time.Time { return now })
	t.Cleanup(func() { _ = store.Close() })

	return store, &now
}

func TestSQLiteSessionStore_SaveLoadRoundTrip(t *testing.T) {
	store, now := setupStore(t)
	ctx := context.Background()

	session, err := domain.NewSessionHistory("abc", *now)
	require.NoError(t, err)
	session.Insert("docs", "https://example.com", "https://tinyurl.com/x", *now)
	session.AddFlash("success", "saved")

	require.NoError(t, store.Save(ctx, session, time.Hour))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.NextID)
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "docs", loaded.Entries[0].Name)
	assert.True(t, loaded.Entries[0].CreatedAt.Equal(*now))
	assert.Equal(t, []domain.Flash{{Category: "success", Message: "saved"}}, loaded.Flashes)
}

func TestSQLiteSessionStore_SaveOverwrites(t *testing.T) {
	store, now := setupStore(t)
	ctx := context.Background()

	session, err := domain.NewSessionHistory("abc", *now)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session, time.Hour))

	session.Insert("second", "https://example.org", "https://tinyurl.com/y", *now)
	require.NoError(t, store.Save(ctx, session, time.Hour))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, loaded.Entries, 1)
}

func TestSQLiteSessionStore_Expiry(t *testing.T) {
	store, now := setupStore(t)
	ctx := context.Background()

	session, err := domain.NewSessionHistory("abc", *now)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session, time.Hour))

	*now = now.Add(time.Hour)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSQLiteSessionStore_Delete(t *testing.T) {
	store, now := setupStore(t)
	ctx := context.Background()

	session, err := domain.NewSessionHistory("abc", *now)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session, time.Hour))
	require.NoError(t, store.Delete(ctx, "abc"))

	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.NoError(t, store.HealthCheck(ctx))
}
