package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/relink/internal/domain"
)

func setupMock(t *testing.T) (*SessionStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	store := NewSessionStore(sqlx.NewDb(db, "postgres"))
	store.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return store, mock
}

func TestPostgresSessionStore_Load(t *testing.T) {
	store, mock := setupMock(t)

	rows := sqlmock.NewRows([]string{"data"}).
		AddRow([]byte(`{"id":"abc","nextId":1,"entries":[{"id":1,"name":"docs","original":"https://example.com","shortened":"https://tinyurl.com/x","createdAt":"2024-01-01T00:00:00Z"}]}`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM sessions WHERE id = $1 AND expires_at > $2`)).
		WithArgs("abc", sqlmock.AnyArg()).
		WillReturnRows(rows)

	session, err := store.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", session.ID)
	require.Len(t, session.Entries, 1)
	assert.Equal(t, "docs", session.Entries[0].Name)
}

func TestPostgresSessionStore_LoadNotFound(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM sessions`)).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPostgresSessionStore_Save(t *testing.T) {
	store, mock := setupMock(t)

	session, err := domain.NewSessionHistory("abc", store.now())
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE expires_at <= $1`)).
		WithArgs(store.now()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (id, data, expires_at, updated_at)`)).
		WithArgs("abc", sqlmock.AnyArg(), store.now().Add(time.Hour), store.now()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), session, time.Hour))
}

func TestPostgresSessionStore_SaveMapsDriverErrors(t *testing.T) {
	store, mock := setupMock(t)

	session, err := domain.NewSessionHistory("abc", store.now())
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions`)).
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	err = store.Save(context.Background(), session, time.Hour)
	assert.ErrorContains(t, err, "database connection error")
}

func TestPostgresSessionStore_SaveRejectsMissingID(t *testing.T) {
	store, _ := setupMock(t)

	err := store.Save(context.Background(), &domain.SessionHistory{}, time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidSessionID)
}

func TestPostgresSessionStore_Delete(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = $1`)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.Delete(context.Background(), "abc"))
}
