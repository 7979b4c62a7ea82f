package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sp3dr4/relink/internal/domain"
)

type mockProvider struct {
	mock.Mock
	name string
}

func newMockProvider(name string) *mockProvider {
	return &mockProvider{name: name}
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Shorten(ctx context.Context, longURL string) (string, error) {
	args := m.Called(ctx, longURL)
	return args.String(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, longURL string) (string, error) {
	args := m.Called(ctx, longURL)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, longURL, shortURL string, ttl time.Duration) error {
	args := m.Called(ctx, longURL, shortURL, ttl)
	return args.Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockShortener struct {
	mock.Mock
}

func (m *mockShortener) Shorten(ctx context.Context, raw string) domain.ShortenResult {
	return m.Called(ctx, raw).Get(0).(domain.ShortenResult)
}

// fakeClock is a settable time source shared by the service and store.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
