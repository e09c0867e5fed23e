// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/cinemind/internal/domain/movie"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RecommenderURL is the base URL of the recommendation service.
	RecommenderURL string `koanf:"recommender_url"`

	// RecommenderTimeoutMS bounds each call to the recommendation service.
	RecommenderTimeoutMS int `koanf:"recommender_timeout_ms"`

	// PosterBaseURL is the image host used to decorate cards.
	PosterBaseURL string `koanf:"poster_base_url"`

	// MaxSessions bounds live sessions; the least recently used is evicted.
	MaxSessions int `koanf:"max_sessions"`

	// SessionIdleMinutes expires sessions left untouched this long.
	SessionIdleMinutes int `koanf:"session_idle_minutes"`

	// Circuit breaker around the recommendation service.
	BreakerMaxRequests  int     `koanf:"breaker_max_requests"`
	BreakerIntervalSec  int     `koanf:"breaker_interval_sec"`
	BreakerTimeoutSec   int     `koanf:"breaker_timeout_sec"`
	BreakerMinRequests  int     `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64 `koanf:"breaker_failure_ratio"`

	// Outbound rate limit; RateLimitRPS <= 0 disables it.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		RecommenderURL:       "http://localhost:5000",
		RecommenderTimeoutMS: 5_000,
		PosterBaseURL:        movie.DefaultPosterBaseURL,
		MaxSessions:          10_000,
		SessionIdleMinutes:   30,
		BreakerMaxRequests:   3,
		BreakerIntervalSec:   60,
		BreakerTimeoutSec:    30,
		BreakerMinRequests:   10,
		BreakerFailureRatio:  0.6,
		RateLimitRPS:         50,
		RateLimitBurst:       10,
	}
}

// RecommenderTimeout returns the per-call timeout.
func (c *Config) RecommenderTimeout() time.Duration {
	return time.Duration(c.RecommenderTimeoutMS) * time.Millisecond
}

// SessionIdle returns the session idle timeout.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.RecommenderURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: recommender_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.RecommenderURL)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.BreakerFailureRatio < 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("%w: breaker_failure_ratio must be in [0,1], got %v", ErrInvalidConfig, c.BreakerFailureRatio)
	}
	return nil
}
