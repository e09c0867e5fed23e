// Package service provides the session controller behind the HTTP API. It owns
// every visitor's application state and runs the entry effect of each page.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cinemind/internal/adapters/repository"
	"github.com/okian/cinemind/internal/domain/catalog"
	"github.com/okian/cinemind/internal/domain/movie"
	"github.com/okian/cinemind/internal/domain/search"
	"github.com/okian/cinemind/internal/domain/selection"
	"github.com/okian/cinemind/pkg/logger"
	"github.com/okian/cinemind/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMaxSessions = 10_000
	defaultSessionIdle = 30 * time.Minute
)

// Service implements the API dependencies for the discovery flow.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions   *repository.MemoryStore[*Session]
	adapter    *catalog.Adapter
	aggregator *catalog.Aggregator

	// Configuration
	maxSessions     int
	sessionIdle     time.Duration
	janitorInterval time.Duration
	posterBase      string
	now             func() time.Time

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxSessions bounds the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionIdle sets how long an untouched session stays live.
func WithSessionIdle(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionIdle = d
		}
	}
}

// WithJanitorInterval sets how often expired sessions are swept. Defaults to
// half the idle timeout.
func WithJanitorInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.janitorInterval = d
		}
	}
}

// WithPosterBase sets the poster image host used for every card.
func WithPosterBase(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.posterBase = base
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service that reads titles from source.
func New(source catalog.TitleSource, opts ...Option) *Service {
	s := &Service{
		maxSessions: defaultMaxSessions,
		sessionIdle: defaultSessionIdle,
		posterBase:  movie.DefaultPosterBaseURL,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.sessions = repository.NewMemoryStore[*Session](
		repository.WithCapacity(s.maxSessions),
		repository.WithIdleTimeout(s.sessionIdle),
		repository.WithClock(s.now),
	)
	s.adapter = catalog.NewAdapter(source, catalog.WithPosterBase(s.posterBase), catalog.WithLogger(s.logger.Named("catalog")))
	s.aggregator = catalog.NewAggregator(source, catalog.WithPosterBase(s.posterBase), catalog.WithLogger(s.logger.Named("aggregator")))

	return s
}

// Start launches the idle-session janitor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.sessions.StartJanitor(ctx, s.janitorInterval)
	s.started = true
	s.logger.Info(ctx, "session service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionIdle", s.sessionIdle),
	)
	return nil
}

// Stop shuts the janitor down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	_ = s.sessions.Close()
	s.started = false
	s.logger.Info(context.Background(), "session service stopped")
}

// Stats is a point-in-time summary for health and metrics.
type Stats struct {
	Started     bool `json:"started"`
	Sessions    int  `json:"sessions"`
	MaxSessions int  `json:"max_sessions"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.sessions.Len(ctx)
	metrics.UpdateActiveSessions(n)
	return Stats{Started: s.started, Sessions: n, MaxSessions: s.maxSessions}
}

// CreateSession starts a new visitor on the landing page.
func (s *Service) CreateSession(ctx context.Context) (View, error) {
	sess := newSession(uuid.NewString(), s.now())
	if err := s.sessions.Put(ctx, sess.ID, sess); err != nil {
		return View{}, fmt.Errorf("store session: %w", err)
	}
	metrics.RecordSessionCreated()
	s.logger.Debug(ctx, "session created", logger.String("session", sess.ID))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// EndSession discards a session.
func (s *Service) EndSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return err
	}
	s.logger.Debug(ctx, "session ended", logger.String("session", id))
	return nil
}

// View renders the current page.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Navigate switches to page and runs its entry effect. Fetch results are
// applied only if no later navigation happened while they were in flight.
func (s *Service) Navigate(ctx context.Context, id string, page Page) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.navigate(ctx, sess, page), nil
}

func (s *Service) navigate(ctx context.Context, sess *Session, page Page) View {
	sess.mu.Lock()
	sess.Page = page
	sess.visit++
	visit := sess.visit
	favorites := append([]movie.Record(nil), sess.Favorites...)
	sess.mu.Unlock()

	metrics.RecordPageVisit(string(page))
	s.logger.Debug(ctx, "page entered",
		logger.String("session", sess.ID),
		logger.String("page", string(page)),
	)

	apply := s.enter(ctx, page, favorites)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if apply != nil {
		if sess.visit == visit {
			apply(sess)
		} else {
			metrics.RecordStaleVisit(string(page))
			s.logger.Debug(ctx, "discarding results of superseded visit",
				logger.String("session", sess.ID),
				logger.String("page", string(page)),
			)
		}
	}
	return sess.view()
}

// enter runs the fetches for page and returns the state update to apply, or
// nil when the page has no entry effect.
func (s *Service) enter(ctx context.Context, page Page, favorites []movie.Record) func(*Session) {
	switch page {
	case PageOnboarding:
		records := s.adapter.Load(ctx, movie.Onboarding)
		return func(sess *Session) {
			sess.Catalog = records
			sess.Results = search.Filter(records, sess.Query)
		}

	case PageHome:
		var home, recs []movie.Record
		// Both calls fail open, so the group never reports an error.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			home = s.adapter.Load(gctx, movie.Home)
			return nil
		})
		g.Go(func() error {
			recs = s.aggregator.Recommend(gctx, favorites)
			return nil
		})
		_ = g.Wait()
		metrics.RecordRecommendationSize(len(recs))
		return func(sess *Session) {
			sess.HomeCatalog = home
			sess.Recommendations = recs
		}

	case PageProfile:
		records := s.adapter.Load(ctx, movie.Profile)
		return func(sess *Session) {
			sess.ProfileCatalog = records
		}

	default:
		return nil
	}
}

// SignIn records the user without validating anything and moves on to
// onboarding.
func (s *Service) SignIn(ctx context.Context, id, name, email, _ string) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	if name == "" {
		name = DefaultUserName
	}

	sess.mu.Lock()
	sess.User = &User{Name: name, Email: email}
	sess.mu.Unlock()

	s.logger.Debug(ctx, "user signed in", logger.String("session", id))
	return s.navigate(ctx, sess, PageOnboarding), nil
}

// Search filters the onboarding catalog by query. Search, ClearSearch and the
// selection operations are only available on the onboarding page.
func (s *Service) Search(ctx context.Context, id, query string) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.require(PageOnboarding); err != nil {
		return View{}, err
	}
	sess.Query = query
	sess.Results = search.Filter(sess.Catalog, query)
	return sess.view(), nil
}

// ClearSearch drops the pending query and its results.
func (s *Service) ClearSearch(ctx context.Context, id string) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.require(PageOnboarding); err != nil {
		return View{}, err
	}
	sess.clearSearch()
	return sess.view(), nil
}

// ToggleSelection picks or unpicks a movie from the onboarding catalog.
// Picking a movie clears the pending search.
func (s *Service) ToggleSelection(ctx context.Context, id string, movieID int) (selection.Change, View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return selection.Change{}, View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.require(PageOnboarding); err != nil {
		return selection.Change{}, View{}, err
	}
	m, ok := movie.Find(sess.Catalog, movieID)
	if !ok {
		return selection.Change{}, View{}, fmt.Errorf("%w: %d", ErrUnknownMovie, movieID)
	}

	change := sess.Selection.Toggle(m)
	if change.ResetsSearch() {
		sess.clearSearch()
	}
	metrics.RecordSelectionChange(change.Kind.String())
	s.logger.Debug(ctx, "selection toggled",
		logger.String("session", id),
		logger.Int("movie", movieID),
		logger.String("change", change.Kind.String()),
		logger.Int("size", sess.Selection.Len()),
	)
	return change, sess.view(), nil
}

// RemoveSelection unpicks movieID if it is picked.
func (s *Service) RemoveSelection(ctx context.Context, id string, movieID int) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.require(PageOnboarding); err != nil {
		return View{}, err
	}
	if sess.Selection.Remove(movieID) {
		metrics.RecordSelectionChange(selection.Removed.String())
	}
	return sess.view(), nil
}

// Continue confirms a full selection as the favorites and moves on to home.
func (s *Service) Continue(ctx context.Context, id string) (View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	if err := sess.require(PageOnboarding); err != nil {
		sess.mu.Unlock()
		return View{}, err
	}
	if !sess.Selection.Full() {
		n := sess.Selection.Len()
		sess.mu.Unlock()
		return View{}, fmt.Errorf("%w: %d of %d picked", ErrSelectionIncomplete, n, selection.MaxSize)
	}
	sess.Favorites = sess.Selection.Items()
	sess.mu.Unlock()

	metrics.RecordOnboardingCompleted()
	return s.navigate(ctx, sess, PageHome), nil
}

// ToggleWatched flips the watched flag of movieID and reports the new state.
func (s *Service) ToggleWatched(ctx context.Context, id string, movieID int) (bool, View, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return false, View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := sess.Watched.Toggle(movieID)
	metrics.RecordWatchedToggle(now)
	return now, sess.view(), nil
}

func (s *Service) session(ctx context.Context, id string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, err
	}
	return sess, nil
}
