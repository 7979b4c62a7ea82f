package memory

import (
	"context"
	"testing"
	"time"

	"github.com/sp3dr4/relink/internal/domain"
)

func newSession(t *testing.T, id string) *domain.SessionHistory {
	t.Helper()
	s, err := domain.NewSessionHistory(id, time.Now())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return s
}

func TestMemorySessionStore_SaveAndLoad(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := newSession(t, "abc")
	session.Insert("docs", "https://example.com", "https://tinyurl.com/x", time.Now())

	if err := store.Save(ctx, session, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].Name != "docs" {
		t.Fatalf("unexpected entries: %+v", loaded.Entries)
	}

	// Mutating the loaded copy must not leak into the store.
	loaded.Insert("other", "https://example.org", "https://tinyurl.com/y", time.Now())

	again, _ := store.Load(ctx, "abc")
	if len(again.Entries) != 1 {
		t.Fatalf("expected stored session to be unchanged, got %d entries", len(again.Entries))
	}
}

func TestMemorySessionStore_LoadUnknown(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Load(context.Background(), "missing")
	if err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewSessionStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Save(ctx, newSession(t, "abc"), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := store.Load(ctx, "abc"); err != nil {
		t.Fatalf("expected session before expiry, got %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := store.Load(ctx, "abc"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}

func TestMemorySessionStore_Delete(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, newSession(t, "abc"), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Load(ctx, "abc"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_SaveRejectsMissingID(t *testing.T) {
	store := NewSessionStore()

	err := store.Save(context.Background(), &domain.SessionHistory{}, time.Hour)
	if err != domain.ErrInvalidSessionID {
		t.Fatalf("expected ErrInvalidSessionID, got %v", err)
	}
}
