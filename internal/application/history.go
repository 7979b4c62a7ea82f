package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/internal/pkg/logging"
	"github.com/sp3dr4/relink/internal/pkg/metrics"
)

// HistoryService owns the per-session history. Every operation purges
// expired entries before it reads or writes.
type HistoryService struct {
	store      domain.SessionStore
	metrics    metrics.Registry
	entryTTL   time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

func NewHistoryService(store domain.SessionStore, registry metrics.Registry, entryTTL, sessionTTL time.Duration) *HistoryService {
	if registry == nil {
		registry = metrics.NewNoOpRegistry()
	}
	if entryTTL <= 0 {
		entryTTL = domain.DefaultHistoryTTL
	}

	return &HistoryService{
		store:      store,
		metrics:    registry,
		entryTTL:   entryTTL,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *HistoryService) WithClock(now func() time.Time) *HistoryService {
	s.now = now
	return s
}

// load returns the purged session and whether it must be written back.
func (s *HistoryService) load(ctx context.Context, sessionID string) (*domain.SessionHistory, bool, error) {
	now := s.now()

	session, err := s.store.Load(ctx, sessionID)
	dirty := false
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		session, err = domain.NewSessionHistory(sessionID, now)
		if err != nil {
			return nil, false, err
		}
		dirty = true
	case err != nil:
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	if removed := session.PurgeExpired(now, s.entryTTL); removed > 0 {
		logging.FromContext(ctx).Info("Purged expired history entries", "count", removed)
		s.metrics.AddHistoryEntriesExpired(removed)
		dirty = true
	}

	return session, dirty, nil
}

func (s *HistoryService) save(ctx context.Context, session *domain.SessionHistory) error {
	if err := s.store.Save(ctx, session, s.sessionTTL); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Initialize makes sure the session exists. Calling it again is a no-op.
func (s *HistoryService) Initialize(ctx context.Context, sessionID string) error {
	session, dirty, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if dirty {
		return s.save(ctx, session)
	}
	return nil
}

func (s *HistoryService) Insert(ctx context.Context, sessionID, name, original, shortened string) (domain.HistoryEntry, error) {
	session, _, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	entry := session.Insert(name, original, shortened, s.now())
	if err := s.save(ctx, session); err != nil {
		return domain.HistoryEntry{}, err
	}

	logging.FromContext(ctx).Info("History entry added", "entry_id", entry.ID, "name", entry.Name)
	return entry, nil
}

// Delete reports whether an entry with the given id was removed.
func (s *HistoryService) Delete(ctx context.Context, sessionID string, entryID int64) (bool, error) {
	session, dirty, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}

	deleted := session.Delete(entryID)
	if deleted || dirty {
		if err := s.save(ctx, session); err != nil {
			return false, err
		}
	}
	if deleted {
		s.metrics.IncHistoryEntriesDeleted()
	}
	return deleted, nil
}

func (s *HistoryService) ListAll(ctx context.Context, sessionID string) ([]domain.EntryView, error) {
	session, err := s.read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.Views(session.List()), nil
}

func (s *HistoryService) Search(ctx context.Context, sessionID, query string) ([]domain.EntryView, error) {
	session, err := s.read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.Views(session.Search(query)), nil
}

func (s *HistoryService) Stats(ctx context.Context, sessionID string) (domain.Stats, error) {
	session, err := s.read(ctx, sessionID)
	if err != nil {
		return domain.Stats{}, err
	}
	return session.Stats(s.now(), s.entryTTL).Rounded(), nil
}

func (s *HistoryService) AddFlash(ctx context.Context, sessionID, category, message string) error {
	session, _, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	session.AddFlash(category, message)
	return s.save(ctx, session)
}

func (s *HistoryService) PopFlashes(ctx context.Context, sessionID string) ([]domain.Flash, error) {
	session, dirty, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	flashes := session.PopFlashes()
	if len(flashes) > 0 || dirty {
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return flashes, nil
}

// Reset drops the whole session.
func (s *HistoryService) Reset(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	return nil
}

// read loads the session and persists the purge, if any, before returning.
func (s *HistoryService) read(ctx context.Context, sessionID string) (*domain.SessionHistory, error) {
	session, dirty, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if dirty {
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}
