package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sp3dr4/relink/internal/domain"
	"github.com/sp3dr4/relink/internal/pkg/logging"
	"github.com/sp3dr4/relink/internal/pkg/metrics"
)

const (
	DefaultMaxRetries     = 2
	DefaultBackoff        = 2 * time.Second
	DefaultFallbackPrefix = "https://relink.local/"
	fallbackHashLength    = 8
)

var errSameURL = errors.New("provider returned the input url")

type ShortenerOptions struct {
	MaxRetries     int
	Backoff        time.Duration
	FallbackPrefix string
	CacheTTL       time.Duration
}

func DefaultShortenerOptions() ShortenerOptions {
	return ShortenerOptions{
		MaxRetries:     DefaultMaxRetries,
		Backoff:        DefaultBackoff,
		FallbackPrefix: DefaultFallbackPrefix,
		CacheTTL:       24 * time.Hour,
	}
}

// ShorteningClient tries each provider in order, retrying transient
// failures, and synthesizes a hash based URL when every provider fails.
type ShorteningClient struct {
	providers []domain.Provider
	cache     domain.ShortenCache
	metrics   metrics.Registry
	logger    *slog.Logger
	opts      ShortenerOptions
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewShorteningClient(
	providers []domain.Provider,
	cache domain.ShortenCache,
	registry metrics.Registry,
	logger *slog.Logger,
	opts ShortenerOptions,
) *ShorteningClient {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.FallbackPrefix == "" {
		opts.FallbackPrefix = DefaultFallbackPrefix
	}
	if registry == nil {
		registry = metrics.NewNoOpRegistry()
	}

	return &ShorteningClient{
		providers: providers,
		cache:     cache,
		metrics:   registry,
		logger:    logger,
		opts:      opts,
		sleep:     sleepContext,
	}
}

// NormalizeURL trims the input and prepends https:// when no http(s)
// scheme is present.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u
	}
	return "https://" + u
}

// ValidateURL applies the minimal checks a normalized URL must pass before
// any provider is called. Passing URLs are always at least eight
// characters long.
func ValidateURL(normalized string) error {
	lower := strings.ToLower(normalized)
	switch {
	case !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://"):
		return fmt.Errorf("%w: unsupported protocol", domain.ErrInvalidURL)
	case !strings.Contains(normalized, "."):
		return fmt.Errorf("%w: missing domain", domain.ErrInvalidURL)
	}
	return nil
}

// FallbackURL is prefix plus the first 8 hex characters of the SHA-256 of
// the normalized URL.
func FallbackURL(prefix, normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(sum[:])[:fallbackHashLength]
}

func (c *ShorteningClient) Shorten(ctx context.Context, raw string) domain.ShortenResult {
	logger := c.requestLogger(ctx)
	normalized := NormalizeURL(raw)

	if err := ValidateURL(normalized); err != nil {
		logger.Info("Rejected url", "input", raw, "error", err)
		c.metrics.IncShortenFailures()
		return domain.ShortenFailure(normalized, err)
	}

	if short := c.lookupCache(ctx, logger, normalized); short != "" {
		c.metrics.IncURLsShortened(domain.SourceCache)
		return domain.ShortenSuccess(normalized, short, domain.SourceCache)
	}

providers:
	for _, p := range c.providers {
		for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
			if ctx.Err() != nil {
				break providers
			}

			short, err := c.attempt(ctx, logger, p, normalized, attempt)
			if err == nil {
				c.storeCache(ctx, logger, normalized, short)
				c.metrics.IncURLsShortened(p.Name())
				return domain.ShortenSuccess(normalized, short, p.Name())
			}

			if errors.Is(err, domain.ErrProviderUnavailable) && attempt < c.opts.MaxRetries {
				if err := c.sleep(ctx, c.opts.Backoff); err != nil {
					break providers
				}
			}
		}
	}

	short := FallbackURL(c.opts.FallbackPrefix, normalized)
	logger.Warn("All providers failed, using fallback", "url", normalized, "short_url", short)
	c.metrics.IncURLsShortened(domain.SourceFallback)
	return domain.ShortenSuccess(normalized, short, domain.SourceFallback)
}

func (c *ShorteningClient) attempt(ctx context.Context, logger *slog.Logger, p domain.Provider, normalized string, attempt int) (string, error) {
	start := time.Now()
	short, err := p.Shorten(ctx, normalized)
	duration := time.Since(start)

	if err == nil {
		short = strings.TrimSpace(short)
		switch short {
		case "":
			err = domain.ErrEmptyResult
		case normalized:
			err = errSameURL
		}
	}

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrProviderUnavailable):
		outcome = metrics.OutcomeRetryable
	case errors.Is(err, domain.ErrEmptyResult), errors.Is(err, errSameURL):
		outcome = metrics.OutcomeSoftFail
	default:
		outcome = metrics.OutcomeError
	}
	c.metrics.RecordProviderAttempt(p.Name(), outcome, duration.Seconds())

	if err != nil {
		logger.Warn("Provider attempt failed",
			"provider", p.Name(),
			"attempt", attempt,
			"outcome", outcome,
			"duration_ms", float64(duration.Nanoseconds())/1e6,
			"error", err,
		)
		return "", err
	}

	logger.Info("Provider attempt succeeded",
		"provider", p.Name(),
		"attempt", attempt,
		"short_url", short,
		"duration_ms", float64(duration.Nanoseconds())/1e6,
	)
	return short, nil
}

func (c *ShorteningClient) lookupCache(ctx context.Context, logger *slog.Logger, normalized string) string {
	if c.cache == nil {
		return ""
	}
	short, err := c.cache.Get(ctx, normalized)
	if err != nil {
		logger.Warn("Shorten cache lookup failed", "error", err)
		return ""
	}
	return short
}

func (c *ShorteningClient) storeCache(ctx context.Context, logger *slog.Logger, normalized, short string) {
	if c.cache == nil || c.opts.CacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, normalized, short, c.opts.CacheTTL); err != nil {
		logger.Warn("Shorten cache store failed", "error", err)
	}
}

func (c *ShorteningClient) requestLogger(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != slog.Default() || c.logger == nil {
		return logger
	}
	return c.logger
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
