package recommender

import (
	"net/http"
	"time"

	"github.com/okian/cinemind/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithRateLimit bounds outbound calls to rps with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(cl *Client) {
		cl.rateRPS = rps
		if burst > 0 {
			cl.rateBurst = burst
		}
	}
}

// WithBreaker configures the circuit breaker.
func WithBreaker(cfg BreakerConfig) Option {
	return func(cl *Client) {
		cl.breakerCfg = cfg.withDefaults()
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}
