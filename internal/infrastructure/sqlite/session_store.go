package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sp3dr4/relink/internal/domain"
)

type sessionRow struct {
	ID        string `db:"id"`
	Data      string `db:"data"`
	ExpiresAt int64  `db:"expires_at"`
	UpdatedAt int64  `db:"updated_at"`
}

// SessionStore keeps sessions in the sessions table. Timestamps are unix
// milliseconds; expired rows are removed on the next save.
type SessionStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

func (s *SessionStore) Load(ctx context.Context, id string) (*domain.SessionHistory, error) {
	var data string
	query := `SELECT data FROM sessions WHERE id = ? AND expires_at > ?`

	err := s.db.GetContext(ctx, &data, query, id, s.now().UnixMilli())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.SessionHistory
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.Entries == nil {
		session.Entries = []domain.HistoryEntry{}
	}

	return &session, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.SessionHistory, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidSessionID
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	now := s.now()
	row := sessionRow{
		ID:        session.ID,
		Data:      string(data),
		ExpiresAt: now.Add(ttl).UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UnixMilli()); err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	query := `
		INSERT INTO sessions (id, data, expires_at, updated_at)
		VALUES (:id, :data, :expires_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SessionStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database connection is nil")
	}
	return s.db.PingContext(ctx)
}
