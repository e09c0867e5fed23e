package walkthrough

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/cinemind/internal/app"
	"github.com/okian/cinemind/pkg/logger"
)

// visitor walks one session from landing to profile.
type visitor struct {
	cfg    *Config
	client *client
	log    logger.Logger
	stats  *Stats
	n      int
}

// journey runs the full flow for one visitor and returns the first failure.
func (v *visitor) journey(ctx context.Context) error {
	view, err := v.client.create(ctx)
	if err != nil {
		return err
	}
	id := view.SessionID
	if err := checkPage(view, service.PageLanding); err != nil {
		return err
	}
	log := v.log.With(logger.String("session", id))

	if view, err = v.client.navigate(ctx, id, service.PageAuth); err != nil {
		return err
	}
	if err := checkPage(view, service.PageAuth); err != nil {
		return err
	}

	name := fmt.Sprintf("Visitor %d", v.n)
	if view, err = v.client.signIn(ctx, id, name, fmt.Sprintf("visitor%d@example.com", v.n)); err != nil {
		return err
	}
	if err := checkOnboarding(view); err != nil {
		return err
	}

	picked, err := v.pickFavorites(ctx, id, view)
	if err != nil {
		return err
	}
	log.Debug(ctx, "favorites picked", logger.Int("count", picked))

	if picked < favoritePicks {
		// Catalog too small: the gate must stay closed.
		if _, err := v.client.cont(ctx, id, http.StatusConflict); err != nil {
			return err
		}
		log.Warn(ctx, "catalog too small to complete onboarding", logger.Int("picked", picked))
		return v.finish(ctx, id)
	}

	if view, err = v.client.cont(ctx, id, http.StatusOK); err != nil {
		return err
	}
	if err := checkHome(view); err != nil {
		return err
	}
	if len(view.Home.Sections[0].Movies) == 0 {
		v.stats.EmptyFeeds.Add(1)
	}

	watched, err := v.watch(ctx, id, view)
	if err != nil {
		return err
	}

	if view, err = v.client.navigate(ctx, id, service.PageProfile); err != nil {
		return err
	}
	if err := checkProfile(view, favoritePicks, watched); err != nil {
		return err
	}
	if view.Profile.User.Name != name {
		return violation("profile user %q, want %q", view.Profile.User.Name, name)
	}

	log.Debug(ctx, "journey complete", logger.Int("watched", watched))
	return v.finish(ctx, id)
}

// pickFavorites selects up to five distinct movies using the first
// suggestion, then the configured queries, then filler queries.
func (v *visitor) pickFavorites(ctx context.Context, id string, view service.View) (int, error) {
	picked := 0
	pick := func(movieID int) error {
		r, err := v.client.toggleSelection(ctx, id, movieID)
		if err != nil {
			return err
		}
		if err := checkOnboarding(r.View); err != nil {
			return err
		}
		if r.Change != "added" {
			return violation("picking movie %d reported %q", movieID, r.Change)
		}
		if r.View.Onboarding.Query != "" {
			return violation("search not reset after a pick")
		}
		picked = r.View.Onboarding.Selected
		return nil
	}

	if s := view.Onboarding.Suggestions; len(s) > 0 {
		if err := pick(s[0].ID); err != nil {
			return picked, err
		}
	}

	queries := append(append([]string{}, v.cfg.Queries...), fillerQueries...)
	for _, q := range queries {
		if picked == favoritePicks {
			break
		}
		res, err := v.client.search(ctx, id, q)
		if err != nil {
			return picked, err
		}
		if err := checkSearch(res, q); err != nil {
			return picked, err
		}
		for _, c := range res.Onboarding.Results {
			if !c.Selected {
				if err := pick(c.ID); err != nil {
					return picked, err
				}
				break
			}
		}
	}
	return picked, nil
}

// watch toggles the first cfg.Watch home cards and flips one back, checking the
// reported state each time. It returns the number left watched.
func (v *visitor) watch(ctx context.Context, id string, home service.View) (int, error) {
	var ids []int
	seen := map[int]struct{}{}
	for _, sec := range home.Home.Sections {
		for _, c := range sec.Movies {
			if _, ok := seen[c.ID]; ok || len(ids) == v.cfg.Watch {
				continue
			}
			seen[c.ID] = struct{}{}
			ids = append(ids, c.ID)
		}
	}

	watched := 0
	for _, movieID := range ids {
		r, err := v.client.toggleWatched(ctx, id, movieID)
		if err != nil {
			return watched, err
		}
		if !r.Watched {
			return watched, violation("movie %d not watched after first toggle", movieID)
		}
		watched++
		if r.View.Home != nil && r.View.Home.WatchedCount != watched {
			return watched, violation("watched_count=%d, want %d", r.View.Home.WatchedCount, watched)
		}
	}

	if len(ids) > 0 {
		r, err := v.client.toggleWatched(ctx, id, ids[0])
		if err != nil {
			return watched, err
		}
		if r.Watched {
			return watched, violation("movie %d still watched after second toggle", ids[0])
		}
		watched--
	}
	return watched, nil
}

// finish ends the session and confirms it is gone.
func (v *visitor) finish(ctx context.Context, id string) error {
	if err := v.client.end(ctx, id); err != nil {
		return err
	}
	err := v.client.view(ctx, id, http.StatusNotFound)
	var se *StatusError
	if errors.As(err, &se) {
		return violation("ended session still served: status %d", se.Status)
	}
	return err
}
