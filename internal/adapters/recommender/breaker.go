package recommender

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/cinemind/pkg/logger"
	"github.com/okian/cinemind/pkg/metrics"
)

// Default breaker configuration constants.
const (
	defaultBreakerMaxRequests  = 3
	defaultBreakerInterval     = time.Minute
	defaultBreakerTimeout      = 30 * time.Second
	defaultBreakerMinRequests  = 10
	defaultBreakerFailureRatio = 0.6
)

// BreakerConfig tunes the circuit breaker around remote calls.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts reset.
	Interval time.Duration
	// Timeout spent open before probing again.
	Timeout time.Duration
	// MinRequests seen before the failure ratio is considered.
	MinRequests uint32
	// FailureRatio at or above which the breaker opens.
	FailureRatio float64
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxRequests == 0 {
		c.MaxRequests = defaultBreakerMaxRequests
	}
	if c.Interval <= 0 {
		c.Interval = defaultBreakerInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultBreakerTimeout
	}
	if c.MinRequests == 0 {
		c.MinRequests = defaultBreakerMinRequests
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = defaultBreakerFailureRatio
	}
	return c
}

func newBreaker(name string, cfg BreakerConfig, log logger.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.UpdateBreakerState(name, stateToFloat(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerGone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateBreakerState(name, stateToFloat(to))
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
}

// stateToFloat converts circuit breaker state to a gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
