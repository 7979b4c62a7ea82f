package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sp3dr4/relink/internal/domain"
)

// SessionStore keeps each session as a JSON blob whose key expires with
// the session.
type SessionStore struct {
	client *redis.Client
	logger *slog.Logger
}

func NewSessionStore(client *redis.Client, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		logger: logger,
	}
}

func (s *SessionStore) Load(ctx context.Context, id string) (*domain.SessionHistory, error) {
	key := sessionKey(id)

	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		s.logger.Error("Failed to load session", "key", key, "error", err)
		return nil, fmt.Errorf("session load failed: %w", err)
	}

	var session domain.SessionHistory
	if err := json.Unmarshal(val, &session); err != nil {
		s.logger.Error("Failed to unmarshal session", "key", key, "error", err)
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
	key := sessionKey(session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Error("Failed to save session", "key", key, "error", err)
		return fmt.Errorf("session save failed: %w", err)
	}

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	key := sessionKey(id)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Failed to delete session", "key", key, "error", err)
		return fmt.Errorf("session delete failed: %w", err)
	}

	return nil
}

func (s *SessionStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close is a no-op: the client is shared and closed by its owner.
func (s *SessionStore) Close() error {
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
