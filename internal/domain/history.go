package domain

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultEntryName  = "Unnamed"
	DefaultHistoryTTL = 2 * time.Hour
	DisplayTimeLayout = "2006-01-02 15:04:05"
)

// HistoryEntry is one successful shortening recorded in a session.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Original  string    `json:"original"`
	Shortened string    `json:"shortened"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntryView is the display form of a HistoryEntry.
type EntryView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Original  string `json:"original"`
	Shortened string `json:"shortened"`
	CreatedAt string `json:"createdAt" example:"2024-01-31 12:00:00"`
}

func (e HistoryEntry) View() EntryView {
	return EntryView{
		ID:        e.ID,
		Name:      e.Name,
		Original:  e.Original,
		Shortened: e.Shortened,
		CreatedAt: e.CreatedAt.Format(DisplayTimeLayout),
	}
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Stats summarises the surviving entries of a session.
type Stats struct {
	TotalCount      int     `json:"totalCount"`
	UniqueNameCount int     `json:"uniqueNameCount"`
	SessionAgeHours float64 `json:"sessionAgeHours"`
	ExpiresInHours  float64 `json:"expiresInHours"`
}

// Rounded returns the stats with hour fields rounded to two decimals and
// expiresInHours clamped at zero.
func (s Stats) Rounded() Stats {
	s.SessionAgeHours = round2(s.SessionAgeHours)
	s.ExpiresInHours = round2(math.Max(0, s.ExpiresInHours))
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SessionHistory is the per-session list of entries. It is persisted as a
// single blob by a SessionStore and never shared between sessions.
type SessionHistory struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	NextID    int64          `json:"nextId"`
	Entries   []HistoryEntry `json:"entries"`
	Flashes   []Flash        `json:"flashes,omitempty"`
}

func NewSessionHistory(id string, now time.Time) (*SessionHistory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidSessionID
	}

	return &SessionHistory{
		ID:        id,
		CreatedAt: now.UTC(),
		Entries:   []HistoryEntry{},
	}, nil
}

// PurgeExpired drops every entry whose age has reached ttl and reports how
// many were removed.
func (h *SessionHistory) PurgeExpired(now time.Time, ttl time.Duration) int {
	kept := h.Entries[:0]
	for _, e := range h.Entries {
		if now.Sub(e.CreatedAt) < ttl {
			kept = append(kept, e)
		}
	}

	removed := len(h.Entries) - len(kept)
	h.Entries = kept
	return removed
}

// Insert appends a new entry and returns it. Ids come from NextID so they
// are never reused after a delete or an expiry.
func (h *SessionHistory) Insert(name, original, shortened string, now time.Time) HistoryEntry {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEntryName
	}

	// NextID must never fall behind an id already handed out.
	for _, e := range h.Entries {
		if e.ID > h.NextID {
			h.NextID = e.ID
		}
	}
	h.NextID++

	entry := HistoryEntry{
		ID:        h.NextID,
		Name:      name,
		Original:  original,
		Shortened: shortened,
		CreatedAt: now.UTC(),
	}
	h.Entries = append(h.Entries, entry)
	return entry
}

func (h *SessionHistory) Delete(id int64) bool {
	for i, e := range h.Entries {
		if e.ID == id {
			h.Entries = append(h.Entries[:i], h.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the entries newest first.
func (h *SessionHistory) List() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(h.Entries))
	for i := len(h.Entries) - 1; i >= 0; i-- {
		out = append(out, h.Entries[i])
	}
	return out
}

// Search matches query against entry names, ignoring case. Results are
// newest first.
func (h *SessionHistory) Search(query string) []HistoryEntry {
	needle := strings.ToLower(query)

	out := []HistoryEntry{}
	for i := len(h.Entries) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(h.Entries[i].Name), needle) {
			out = append(out, h.Entries[i])
		}
	}
	return out
}

// Stats computes the session age from the oldest surviving entry. Callers
// purge first.
func (h *SessionHistory) Stats(now time.Time, ttl time.Duration) Stats {
	names := make(map[string]struct{}, len(h.Entries))
	var oldest time.Time
	for i, e := range h.Entries {
		names[e.Name] = struct{}{}
		if i == 0 || e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
	}

	var age float64
	if len(h.Entries) > 0 {
		age = now.Sub(oldest).Hours()
	}

	return Stats{
		TotalCount:      len(h.Entries),
		UniqueNameCount: len(names),
		SessionAgeHours: age,
		ExpiresInHours:  math.Max(0, ttl.Hours()-age),
	}
}

func (h *SessionHistory) AddFlash(category, message string) {
	h.Flashes = append(h.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns the pending flashes and clears them.
func (h *SessionHistory) PopFlashes() []Flash {
	flashes := h.Flashes
	h.Flashes = nil
	return flashes
}

// Clone returns a deep copy so stores can hand out histories without
// sharing backing arrays.
func (h *SessionHistory) Clone() *SessionHistory {
	c := *h
	c.Entries = append([]HistoryEntry(nil), h.Entries...)
	if c.Entries == nil {
		c.Entries = []HistoryEntry{}
	}
	if h.Flashes != nil {
		c.Flashes = append([]Flash(nil), h.Flashes...)
	}
	return &c
}

func Views(entries []HistoryEntry) []EntryView {
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.View())
	}
	return out
}
