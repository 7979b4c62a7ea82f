package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp3dr4/relink/internal/domain"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithEndpoint("test", srv.URL+"/create?url=%s", srv.Client(), "relink-test")
}

func TestHTTPProvider_Shorten(t *testing.T) {
	var gotURL, gotUA string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte("https://tiny.example/abc\n"))
	})

	short, err := p.Shorten(context.Background(), "https://example.com/a?b=c&d=e")
	require.NoError(t, err)

	assert.Equal(t, "https://tiny.example/abc", short)
	assert.Equal(t, "https://example.com/a?b=c&d=e", gotURL)
	assert.Equal(t, "relink-test", gotUA)
	assert.Equal(t, "test", p.Name())
}

func TestHTTPProvider_ShortenErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
		wantErr       error
	}{
		{"server error", http.StatusBadGateway, "", true, nil},
		{"rate limited", http.StatusTooManyRequests, "", true, nil},
		{"bad request", http.StatusBadRequest, "Error", false, nil},
		{"empty body", http.StatusOK, "  \n", false, domain.ErrEmptyResult},
		{"not a url", http.StatusOK, "Error: please enter a valid URL", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Shorten(context.Background(), "https://example.com")
			require.Error(t, err)
			assert.Equal(t, tt.wantTransient, errors.Is(err, domain.ErrProviderUnavailable))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHTTPProvider_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := &http.Client{Timeout: 50 * time.Millisecond}
	p := NewWithEndpoint("slow", srv.URL+"/?url=%s", client, "")

	_, err := p.Shorten(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestHTTPProvider_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	p := NewWithEndpoint("down", addr+"/?url=%s", nil, "")

	_, err := p.Shorten(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestHTTPProvider_CancelledContextIsNotTransient(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("https://tiny.example/abc"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Shorten(ctx, "https://example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestNewAll(t *testing.T) {
	providers, err := NewAll([]string{"isgd", "tinyurl"}, nil, "")
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, "isgd", providers[0].Name())
	assert.Equal(t, "tinyurl", providers[1].Name())

	_, err = NewAll([]string{"bitly"}, nil, "")
	assert.ErrorContains(t, err, "unknown shortening provider")
}
