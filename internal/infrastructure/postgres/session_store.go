package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sp3dr4/relink/internal/domain"
)

// SessionStore keeps sessions as JSONB rows. Expired rows are removed on
// the next save.
type SessionStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*domain.SessionHistory, error) {
	var data []byte
	query := `SELECT data FROM sessions WHERE id = $1 AND expires_at > $2`

	err := s.db.GetContext(ctx, &data, query, id, s.now())
	if err != nil {
		return nil, s.handlePostgreSQLError(err, "load session")
	}

	var session domain.SessionHistory
	if err := json.Unmarshal(data, &session); err != nil {
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now); err != nil {
		return s.handlePostgreSQLError(err, "purge expired sessions")
	}

	query := `
		INSERT INTO sessions (id, data, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, session.ID, string(data), now.Add(ttl), now); err != nil {
		return s.handlePostgreSQLError(err, "save session")
	}

	slog.Debug("Session saved", "session_id", session.ID, "entries", len(session.Entries))
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return s.handlePostgreSQLError(err, "delete session")
	}
	return nil
}

// handlePostgreSQLError converts PostgreSQL-specific errors to domain errors
func (s *SessionStore) handlePostgreSQLError(err error, operation string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSessionNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		slog.Error("PostgreSQL error",
			"operation", operation,
			"code", pqErr.Code,
			"message", pqErr.Message,
			"detail", pqErr.Detail,
		)

		switch pqErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("%s: required field missing: %s", operation, pqErr.Column)
		case "22P02": // invalid_text_representation
			return fmt.Errorf("%s: invalid session payload: %s", operation, pqErr.Message)
		case "08000", "08003", "08006": // connection errors
			return fmt.Errorf("%s: database connection error: %s", operation, pqErr.Message)
		default:
			return fmt.Errorf("%s: database error [%s]: %s", operation, pqErr.Code, pqErr.Message)
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
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
