// Package catalog turns remote title lists into movie records. Both the
// catalog adapter and the recommendation aggregator fail open: a remote
// failure is logged and counted, and the caller gets an empty list.
package catalog

import (
	"context"

	"github.com/okian/cinemind/internal/domain/movie"
	"github.com/okian/cinemind/pkg/logger"
	"github.com/okian/cinemind/pkg/metrics"
)

// MaxRecommendations bounds the aggregated list.
const MaxRecommendations = 50

// TitleSource is the remote recommendation service.
type TitleSource interface {
	AllTitles(ctx context.Context) ([]string, error)
	Recommendations(ctx context.Context, seed string) ([]string, error)
}

// Option configures an Adapter or Aggregator.
type Option func(*options)

type options struct {
	posterBase string
	logger     logger.Logger
}

// WithPosterBase sets the poster image host.
func WithPosterBase(base string) Option {
	return func(o *options) {
		if base != "" {
			o.posterBase = base
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(name string, opts []Option) options {
	o := options{posterBase: movie.DefaultPosterBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named(name)
	}
	return o
}

// Adapter loads the full catalog for a page.
type Adapter struct {
	source TitleSource
	opts   options
}

// NewAdapter creates a catalog adapter over source.
func NewAdapter(source TitleSource, opts ...Option) *Adapter {
	return &Adapter{source: source, opts: newOptions("catalog", opts)}
}

// Load fetches every title and normalizes it under ns. The result is never nil.
func (a *Adapter) Load(ctx context.Context, ns movie.Namespace) []movie.Record {
	titles, err := a.source.AllTitles(ctx)
	if err != nil {
		a.opts.logger.Warn(ctx, "catalog fetch failed; serving empty catalog",
			logger.String("namespace", ns.Name),
			logger.Error(err),
		)
		metrics.RecordFallback("catalog")
		return []movie.Record{}
	}
	return movie.Normalize(titles, ns, a.opts.posterBase)
}

// Aggregator builds the "Recommended for You" list from the favorites.
type Aggregator struct {
	source TitleSource
	opts   options
}

// NewAggregator creates a recommendation aggregator over source.
func NewAggregator(source TitleSource, opts ...Option) *Aggregator {
	return &Aggregator{source: source, opts: newOptions("aggregator", opts)}
}

// Recommend returns up to MaxRecommendations records seeded by the first
// favorite. No remote call is made when favorites is empty. The result is
// never nil.
func (a *Aggregator) Recommend(ctx context.Context, favorites []movie.Record) []movie.Record {
	if len(favorites) == 0 {
		return []movie.Record{}
	}
	seed := favorites[0].Title

	titles, err := a.source.Recommendations(ctx, seed)
	if err != nil {
		a.opts.logger.Warn(ctx, "recommendation fetch failed; serving empty list",
			logger.String("seed", seed),
			logger.Error(err),
		)
		metrics.RecordFallback("recommendations")
		return []movie.Record{}
	}
	if len(titles) > MaxRecommendations {
		titles = titles[:MaxRecommendations]
	}
	return movie.Normalize(titles, movie.Recommendations, a.opts.posterBase)
}
