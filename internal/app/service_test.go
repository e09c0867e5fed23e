package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/cinemind/internal/adapters/recommender"
	service "github.com/okian/cinemind/internal/app"
	"github.com/okian/cinemind/internal/domain/selection"
	"github.com/okian/cinemind/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var catalogTitles = []string{
	"Inception", "Interstellar", "Amelie", "The Matrix", "Memento",
	"Tenet", "Dunkirk", "Insomnia", "Heat", "Alien",
}

// remote is a fake recommendation service.
type remote struct {
	srv       *httptest.Server
	fail      atomic.Bool
	listCalls atomic.Int32
	recCalls  atomic.Int32

	mu    sync.Mutex
	seeds []string
}

func newRemote() *remote {
	r := &remote{}
	r.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		if req.URL.Path == "/recommend/all" {
			r.listCalls.Add(1)
			_, _ = fmt.Fprintf(w, `["%s"]`, strings.Join(catalogTitles, `","`))
			return
		}
		r.recCalls.Add(1)
		r.mu.Lock()
		r.seeds = append(r.seeds, strings.TrimPrefix(req.URL.Path, "/recommend/"))
		r.mu.Unlock()
		_, _ = w.Write([]byte(`{"recommendations":["Memento","Tenet","Heat"]}`))
	}))
	return r
}

func (r *remote) Seeds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.seeds...)
}

func (r *remote) client() *recommender.Client {
	return recommender.New(r.srv.URL, recommender.WithTimeout(2*time.Second))
}

func newService(r *remote, opts ...service.Option) *service.Service {
	return service.New(r.client(), opts...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		r := newRemote()
		defer r.srv.Close()
		svc := newService(r)

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats(context.Background())
			So(stats.Started, ShouldBeFalse)
			So(stats.Sessions, ShouldEqual, 0)
			So(stats.MaxSessions, ShouldEqual, 10_000)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		r := newRemote()
		defer r.srv.Close()
		svc := newService(r,
			service.WithMaxSessions(2),
			service.WithSessionIdle(time.Minute),
			service.WithJanitorInterval(time.Second),
			service.WithPosterBase("http://img"),
			service.WithLogger(logger.Get()),
		)

		Convey("Then the session bound applies", func() {
			ctx := context.Background()
			first, _ := svc.CreateSession(ctx)
			_, _ = svc.CreateSession(ctx)
			_, _ = svc.CreateSession(ctx)

			So(svc.GetStats(ctx).Sessions, ShouldEqual, 2)
			_, err := svc.View(ctx, first.SessionID)
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		r := newRemote()
		defer r.srv.Close()
		svc := newService(r)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it is marked as started", func() {
				So(svc.GetStats(ctx).Started, ShouldBeTrue)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats(ctx).Started, ShouldBeFalse)
			})
		})
	})
}

func TestService_IdleSessionsExpire(t *testing.T) {
	Convey("Given a service with a controllable clock", t, func() {
		r := newRemote()
		defer r.srv.Close()

		var mu sync.Mutex
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		svc := newService(r, service.WithSessionIdle(time.Minute), service.WithClock(clock))
		ctx := context.Background()

		v, err := svc.CreateSession(ctx)
		So(err, ShouldBeNil)

		Convey("When the session is left idle past the timeout", func() {
			mu.Lock()
			now = now.Add(2 * time.Minute)
			mu.Unlock()

			_, err := svc.View(ctx, v.SessionID)

			Convey("Then it is gone", func() {
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Flow(t *testing.T) {
	Convey("Given a running service and a new session", t, func() {
		r := newRemote()
		defer r.srv.Close()
		svc := newService(r)
		ctx := context.Background()

		v, err := svc.CreateSession(ctx)
		So(err, ShouldBeNil)
		id := v.SessionID
		So(v.Page, ShouldEqual, service.PageLanding)
		So(v.Onboarding, ShouldBeNil)

		Convey("When signing in without a name", func() {
			v, err := svc.SignIn(ctx, id, "", "me@example.com", "anything")

			Convey("Then the default name is used and onboarding is loaded", func() {
				So(err, ShouldBeNil)
				So(v.Page, ShouldEqual, service.PageOnboarding)
				So(v.User.Name, ShouldEqual, service.DefaultUserName)
				So(v.User.Email, ShouldEqual, "me@example.com")
				So(r.listCalls.Load(), ShouldEqual, int32(1))
				So(v.Onboarding.Suggestions, ShouldHaveLength, service.MaxSuggestions)
				So(v.Onboarding.Suggestions[0].Title, ShouldEqual, "Inception")
				So(v.Onboarding.CanContinue, ShouldBeFalse)
				So(v.Onboarding.Slots, ShouldEqual, selection.MaxSize)
			})
		})

		Convey("When searching the onboarding catalog", func() {
			_, _ = svc.Navigate(ctx, id, service.PageOnboarding)
			v, err := svc.Search(ctx, id, "in")

			Convey("Then matches keep catalog order and hide suggestions", func() {
				So(err, ShouldBeNil)
				titles := []string{}
				for _, c := range v.Onboarding.Results {
					titles = append(titles, c.Title)
				}
				So(titles, ShouldResemble, []string{"Inception", "Interstellar", "Insomnia"})
				So(v.Onboarding.Suggestions, ShouldBeEmpty)
				So(v.Onboarding.Query, ShouldEqual, "in")
			})

			Convey("And picking a result clears the search", func() {
				change, v, err := svc.ToggleSelection(ctx, id, v.Onboarding.Results[1].ID)
				So(err, ShouldBeNil)
				So(change.Kind, ShouldEqual, selection.Added)
				So(v.Onboarding.Query, ShouldEqual, "")
				So(v.Onboarding.Results, ShouldBeEmpty)
				So(v.Onboarding.Selection[0].Title, ShouldEqual, "Interstellar")
			})

			Convey("And clearing the search empties results", func() {
				v, err := svc.ClearSearch(ctx, id)
				So(err, ShouldBeNil)
				So(v.Onboarding.Query, ShouldEqual, "")
				So(v.Onboarding.Results, ShouldBeEmpty)
			})
		})

		Convey("When toggling a movie that is not in the catalog", func() {
			_, _ = svc.Navigate(ctx, id, service.PageOnboarding)
			_, _, err := svc.ToggleSelection(ctx, id, 9999)

			Convey("Then ErrUnknownMovie is returned", func() {
				So(errors.Is(err, service.ErrUnknownMovie), ShouldBeTrue)
			})
		})

		Convey("When picking more than five movies", func() {
			_, _ = svc.Navigate(ctx, id, service.PageOnboarding)
			for movieID := 1; movieID <= 5; movieID++ {
				_, _, err := svc.ToggleSelection(ctx, id, movieID)
				So(err, ShouldBeNil)
			}
			change, v, err := svc.ToggleSelection(ctx, id, 6)

			Convey("Then the sixth pick is ignored", func() {
				So(err, ShouldBeNil)
				So(change.Kind, ShouldEqual, selection.Ignored)
				So(v.Onboarding.Selected, ShouldEqual, 5)
				So(v.Onboarding.CanContinue, ShouldBeTrue)
			})

			Convey("And removing a pick frees a slot", func() {
				v, err := svc.RemoveSelection(ctx, id, 3)
				So(err, ShouldBeNil)
				So(v.Onboarding.Selected, ShouldEqual, 4)

				v, err = svc.RemoveSelection(ctx, id, 3)
				So(err, ShouldBeNil)
				So(v.Onboarding.Selected, ShouldEqual, 4)
			})
		})

		Convey("When continuing with an incomplete selection", func() {
			_, _ = svc.Navigate(ctx, id, service.PageOnboarding)
			_, _, _ = svc.ToggleSelection(ctx, id, 1)
			_, err := svc.Continue(ctx, id)

			Convey("Then ErrSelectionIncomplete is returned and the page stays", func() {
				So(errors.Is(err, service.ErrSelectionIncomplete), ShouldBeTrue)
				v, _ := svc.View(ctx, id)
				So(v.Page, ShouldEqual, service.PageOnboarding)
			})
		})

		Convey("When continuing with five picks", func() {
			_, _ = svc.SignIn(ctx, id, "Ada", "ada@example.com", "")
			for _, movieID := range []int{3, 1, 2, 4, 5} {
				_, _, _ = svc.ToggleSelection(ctx, id, movieID)
			}
			v, err := svc.Continue(ctx, id)

			Convey("Then home shows recommendations seeded by the first pick", func() {
				So(err, ShouldBeNil)
				So(v.Page, ShouldEqual, service.PageHome)
				So(r.Seeds(), ShouldResemble, []string{"Amelie"})
				So(v.Home.Sections, ShouldHaveLength, 2)

				recs := v.Home.Sections[0]
				So(recs.Title, ShouldEqual, service.SectionRecommends)
				So(recs.Movies, ShouldHaveLength, 3)
				So(recs.Movies[0].ID, ShouldEqual, 20001)
				So(recs.Movies[0].Reason, ShouldNotBeNil)
				So(recs.Movies[0].Reason.Text, ShouldContainSubstring, "Amelie")

				all := v.Home.Sections[1]
				So(all.Title, ShouldEqual, service.SectionAllMovies)
				So(all.Movies, ShouldHaveLength, len(catalogTitles))
				So(all.Movies[0].PosterURL, ShouldEndWith, "random=1000")
			})

			Convey("And marking movies watched shows up on the profile", func() {
				watched, v, err := svc.ToggleWatched(ctx, id, 20002)
				So(err, ShouldBeNil)
				So(watched, ShouldBeTrue)
				So(v.Home.WatchedCount, ShouldEqual, 1)
				So(v.Home.Sections[0].Movies[1].Watched, ShouldBeTrue)

				_, _, _ = svc.ToggleWatched(ctx, id, 1)

				v, err = svc.Navigate(ctx, id, service.PageProfile)
				So(err, ShouldBeNil)
				So(v.Profile.User.Name, ShouldEqual, "Ada")
				So(v.Profile.Favorites, ShouldHaveLength, 5)
				So(v.Profile.TopGenres, ShouldHaveLength, 1)
				So(v.Profile.TopGenres[0].Genre, ShouldEqual, "Drama")
				So(v.Profile.TopGenres[0].Share, ShouldEqual, 1.0)
				So(v.Profile.WatchedCount, ShouldEqual, 2)
				So(v.Profile.Watched, ShouldHaveLength, 2)
				So(v.Profile.Watched[0].Title, ShouldEqual, "Inception")
				So(v.Profile.Watched[1].Title, ShouldEqual, "Tenet")
			})

			Convey("And onboarding operations are refused off the onboarding page", func() {
				_, _, err := svc.ToggleSelection(ctx, id, 6)
				So(errors.Is(err, service.ErrWrongPage), ShouldBeTrue)

				_, err = svc.Navigate(ctx, id, service.PageProfile)
				So(err, ShouldBeNil)
				_, err = svc.Continue(ctx, id)
				So(errors.Is(err, service.ErrWrongPage), ShouldBeTrue)
				_, err = svc.RemoveSelection(ctx, id, 1)
				So(errors.Is(err, service.ErrWrongPage), ShouldBeTrue)
				_, err = svc.Search(ctx, id, "in")
				So(errors.Is(err, service.ErrWrongPage), ShouldBeTrue)
				_, err = svc.ClearSearch(ctx, id)
				So(errors.Is(err, service.ErrWrongPage), ShouldBeTrue)

				v, err := svc.Navigate(ctx, id, service.PageProfile)
				So(err, ShouldBeNil)
				So(v.Profile.Favorites, ShouldHaveLength, 5)
				So(v.Profile.Favorites[0].Title, ShouldEqual, "Amelie")
			})

			Convey("And toggling watched twice unmarks", func() {
				_, _, _ = svc.ToggleWatched(ctx, id, 7)
				watched, v, _ := svc.ToggleWatched(ctx, id, 7)
				So(watched, ShouldBeFalse)
				So(v.Home.WatchedCount, ShouldEqual, 0)
			})
		})

		Convey("When going home without favorites", func() {
			v, err := svc.Navigate(ctx, id, service.PageHome)

			Convey("Then no recommendation call is made", func() {
				So(err, ShouldBeNil)
				So(r.recCalls.Load(), ShouldEqual, int32(0))
				So(v.Home.Sections[0].Movies, ShouldBeEmpty)
				So(v.Home.Sections[1].Movies, ShouldNotBeEmpty)
			})
		})

		Convey("When the remote service is down", func() {
			r.fail.Store(true)
			v, err := svc.Navigate(ctx, id, service.PageOnboarding)

			Convey("Then the page renders with an empty catalog", func() {
				So(err, ShouldBeNil)
				So(v.Onboarding.Suggestions, ShouldBeEmpty)
			})

			Convey("And re-navigating after recovery fetches again", func() {
				r.fail.Store(false)
				v, err := svc.Navigate(ctx, id, service.PageOnboarding)
				So(err, ShouldBeNil)
				So(v.Onboarding.Suggestions, ShouldNotBeEmpty)
			})
		})

		Convey("When navigating to landing or auth", func() {
			before := r.listCalls.Load()
			_, _ = svc.Navigate(ctx, id, service.PageAuth)
			v, err := svc.Navigate(ctx, id, service.PageLanding)

			Convey("Then nothing is fetched", func() {
				So(err, ShouldBeNil)
				So(v.Page, ShouldEqual, service.PageLanding)
				So(r.listCalls.Load(), ShouldEqual, before)
			})
		})

		Convey("When the session is ended", func() {
			So(svc.EndSession(ctx, id), ShouldBeNil)

			Convey("Then every operation reports it missing", func() {
				_, err := svc.View(ctx, id)
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
				So(errors.Is(svc.EndSession(ctx, id), service.ErrSessionNotFound), ShouldBeTrue)
				_, _, err = svc.ToggleWatched(ctx, id, 1)
				So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			})
		})
	})
}

// slowSource blocks AllTitles until released so a second navigation can
// overtake the first.
type slowSource struct {
	release chan struct{}
	calls   atomic.Int32
}

func (s *slowSource) AllTitles(ctx context.Context) ([]string, error) {
	if s.calls.Add(1) == 1 {
		<-s.release
		return []string{"Stale"}, nil
	}
	return []string{"Fresh"}, nil
}

func (s *slowSource) Recommendations(context.Context, string) ([]string, error) {
	return []string{}, nil
}

func TestService_StaleVisit(t *testing.T) {
	Convey("Given an onboarding fetch that is still in flight", t, func() {
		src := &slowSource{release: make(chan struct{})}
		svc := service.New(src)
		ctx := context.Background()
		v, _ := svc.CreateSession(ctx)
		id := v.SessionID

		done := make(chan service.View)
		go func() {
			v, _ := svc.Navigate(ctx, id, service.PageOnboarding)
			done <- v
		}()
		for src.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}

		Convey("When the user navigates again before it completes", func() {
			fresh, err := svc.Navigate(ctx, id, service.PageOnboarding)
			So(err, ShouldBeNil)
			close(src.release)
			<-done

			Convey("Then the older result is discarded", func() {
				So(fresh.Onboarding.Suggestions[0].Title, ShouldEqual, "Fresh")
				v, _ := svc.View(ctx, id)
				So(v.Onboarding.Suggestions, ShouldHaveLength, 1)
				So(v.Onboarding.Suggestions[0].Title, ShouldEqual, "Fresh")
			})
		})
	})
}

func TestParsePage(t *testing.T) {
	Convey("Given page names", t, func() {
		p, err := service.ParsePage(" Home ")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, service.PageHome)

		_, err = service.ParsePage("settings")
		So(errors.Is(err, service.ErrUnknownPage), ShouldBeTrue)
	})
}
