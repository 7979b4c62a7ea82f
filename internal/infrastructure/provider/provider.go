// Package provider implements domain.Provider on top of public shortening
// services that answer a GET with the short URL as plain text.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/sp3dr4/relink/internal/domain"
)

const maxResponseBytes = 4 << 10

// Endpoints maps provider names to their API URL; %s receives the
// query-escaped long URL.
var Endpoints = map[string]string{
	"tinyurl": "https://tinyurl.com/api-create.php?url=%s",
	"isgd":    "https://is.gd/create.php?format=simple&url=%s",
	"dagd":    "https://da.gd/s?url=%s",
	"clckru":  "https://clck.ru/--?url=%s",
}

type HTTPProvider struct {
	name      string
	endpoint  string
	client    *http.Client
	userAgent string
}

// New returns the provider registered under name.
func New(name string, client *http.Client, userAgent string) (*HTTPProvider, error) {
	endpoint, ok := Endpoints[name]
	if !ok {
		return nil, fmt.Errorf("unknown shortening provider: %s", name)
	}
	return NewWithEndpoint(name, endpoint, client, userAgent), nil
}

// NewWithEndpoint builds a provider against an arbitrary endpoint template.
func NewWithEndpoint(name, endpoint string, client *http.Client, userAgent string) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{
		name:      name,
		endpoint:  endpoint,
		client:    client,
		userAgent: userAgent,
	}
}

// NewAll builds the providers named in order.
func NewAll(names []string, client *http.Client, userAgent string) ([]domain.Provider, error) {
	providers := make([]domain.Provider, 0, len(names))
	for _, name := range names {
		p, err := New(name, client, userAgent)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func (p *HTTPProvider) Name() string {
	return p.name
}

func (p *HTTPProvider) Shorten(ctx context.Context, longURL string) (string, error) {
	target := fmt.Sprintf(p.endpoint, url.QueryEscape(longURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to build request: %w", p.name, err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isTransient(err) {
			return "", fmt.Errorf("%s: %w: %v", p.name, domain.ErrProviderUnavailable, err)
		}
		return "", fmt.Errorf("%s: request failed: %w", p.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%s: %w: reading body: %v", p.name, domain.ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%s: %w: status %d", p.name, domain.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%s: unexpected status %d", p.name, resp.StatusCode)
	}

	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", fmt.Errorf("%s: %w", p.name, domain.ErrEmptyResult)
	}
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		return "", fmt.Errorf("%s: unexpected response %q", p.name, truncate(short, 64))
	}

	return short, nil
}

// isTransient reports timeouts and connection failures. A cancelled
// request context is not transient: the caller gave up.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
