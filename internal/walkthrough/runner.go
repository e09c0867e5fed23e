package walkthrough

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/cinemind/pkg/logger"
)

// ErrJourneysFailed is returned by Run when any visitor journey failed.
var ErrJourneysFailed = errors.New("journeys failed")

// Run executes cfg.Visitors journeys across cfg.Workers workers and returns the
// collected statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("walkthrough")

	log.Info(ctx, "starting walkthrough",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("visitors", cfg.Visitors),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("queries", cfg.Queries),
		logger.Int("watch", cfg.Watch))

	c := newClient(cfg, stats)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	workers := max(cfg.Workers, 1)
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				stats.JourneysStarted.Add(1)
				v := &visitor{cfg: cfg, client: c, log: log, stats: stats, n: n}
				if err := v.journey(ctx); err != nil {
					stats.JourneysFailed.Add(1)
					if errors.Is(err, ErrViolation) {
						stats.Violations.Add(1)
					}
					log.Error(ctx, "journey failed", logger.Int("visitor", n), logger.Error(err))
					continue
				}
				stats.JourneysCompleted.Add(1)
			}
		}()
	}

	done := make(chan struct{})
	go reportProgress(ctx, cfg, stats, log, done)

	go func() {
		defer close(jobs)
		for n := 1; n <= cfg.Visitors; n++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- n:
			}
		}
	}()

	wg.Wait()
	close(done)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if n := stats.JourneysFailed.Load(); n > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrJourneysFailed, n, stats.JourneysStarted.Load())
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func reportProgress(ctx context.Context, cfg *Config, stats *Stats, log logger.Logger, done <-chan struct{}) {
	if !cfg.Verbose {
		return
	}
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info(ctx, "progress",
				logger.Int64("started", stats.JourneysStarted.Load()),
				logger.Int64("completed", stats.JourneysCompleted.Load()),
				logger.Int64("failed", stats.JourneysFailed.Load()))
		}
	}
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var requestsPerSecond float64
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Requests.Load()) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int64("journeysStarted", stats.JourneysStarted.Load()),
		logger.Int64("journeysCompleted", stats.JourneysCompleted.Load()),
		logger.Int64("journeysFailed", stats.JourneysFailed.Load()),
		logger.Int64("violations", stats.Violations.Load()),
		logger.Int64("emptyFeeds", stats.EmptyFeeds.Load()),
		logger.Int64("requests", stats.Requests.Load()),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
