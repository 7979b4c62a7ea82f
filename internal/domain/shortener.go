package domain

import (
	"context"
	"time"
)

// ResultKind tags a ShortenResult.
type ResultKind int

const (
	ResultFailure ResultKind = iota
	ResultSuccess
)

func (k ResultKind) String() string {
	if k == ResultSuccess {
		return "success"
	}
	return "failure"
}

const (
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// ShortenResult is the outcome of shortening one URL.
type ShortenResult struct {
	Kind     ResultKind
	Original string // normalized input
	ShortURL string
	Source   string // provider name, SourceCache or SourceFallback
	Reason   error
}

func ShortenSuccess(original, shortURL, source string) ShortenResult {
	return ShortenResult{Kind: ResultSuccess, Original: original, ShortURL: shortURL, Source: source}
}

func ShortenFailure(original string, reason error) ShortenResult {
	return ShortenResult{Kind: ResultFailure, Original: original, Reason: reason}
}

func (r ShortenResult) OK() bool {
	return r.Kind == ResultSuccess
}

// Provider is an external shortening service. Implementations wrap
// timeouts and connection failures in ErrProviderUnavailable so callers
// know the attempt may be retried after a backoff.
type Provider interface {
	Name() string
	Shorten(ctx context.Context, longURL string) (string, error)
}

// ShortenCache remembers provider results per normalized URL.
type ShortenCache interface {
	// Get returns "" on a cache miss.
	Get(ctx context.Context, longURL string) (string, error)

	Set(ctx context.Context, longURL, shortURL string, ttl time.Duration) error
	Ping(ctx context.Context) error
}
