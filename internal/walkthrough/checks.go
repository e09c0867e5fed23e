package walkthrough

import (
	"errors"
	"fmt"
	"strings"

	service "github.com/okian/cinemind/internal/app"
)

// ErrViolation marks a response that breaks a page guarantee.
var ErrViolation = errors.New("invariant violated")

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrViolation, fmt.Sprintf(format, args...))
}

func checkPage(v service.View, want service.Page) error {
	if v.Page != want {
		return violation("page %q, want %q", v.Page, want)
	}
	return nil
}

// checkOnboarding verifies the picker state: bounded unique selection and
// consistent counters.
func checkOnboarding(v service.View) error {
	if err := checkPage(v, service.PageOnboarding); err != nil {
		return err
	}
	ov := v.Onboarding
	if ov == nil {
		return violation("onboarding payload missing")
	}
	if len(ov.Selection) > favoritePicks {
		return violation("selection holds %d movies", len(ov.Selection))
	}
	seen := make(map[int]struct{}, len(ov.Selection))
	for _, m := range ov.Selection {
		if _, dup := seen[m.ID]; dup {
			return violation("movie %d selected twice", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	if ov.Selected != len(ov.Selection) {
		return violation("selected=%d but %d movies listed", ov.Selected, len(ov.Selection))
	}
	if ov.CanContinue != (len(ov.Selection) == favoritePicks) {
		return violation("can_continue=%t with %d picks", ov.CanContinue, len(ov.Selection))
	}
	if len(ov.Suggestions) > maxSuggestions {
		return violation("%d suggestions shown", len(ov.Suggestions))
	}
	return nil
}

// checkSearch verifies every result matches the typed query.
func checkSearch(v service.View, query string) error {
	if err := checkOnboarding(v); err != nil {
		return err
	}
	results := v.Onboarding.Results
	if len(results) > maxSearchResults {
		return violation("%d search results for %q", len(results), query)
	}
	needle := strings.ToLower(query)
	for _, c := range results {
		if !strings.Contains(strings.ToLower(c.Title), needle) {
			return violation("result %q does not contain %q", c.Title, query)
		}
	}
	return nil
}

func checkHome(v service.View) error {
	if err := checkPage(v, service.PageHome); err != nil {
		return err
	}
	hv := v.Home
	if hv == nil || len(hv.Sections) != 2 {
		return violation("home must carry two sections")
	}
	if n := len(hv.Sections[0].Movies); n > maxRecommendations {
		return violation("%d recommendations shown", n)
	}
	if n := len(hv.Sections[1].Movies); n > maxAllMovies {
		return violation("%d catalog movies shown", n)
	}
	return nil
}

// checkProfile verifies the taste summary against what the visitor did.
func checkProfile(v service.View, favorites, watched int) error {
	if err := checkPage(v, service.PageProfile); err != nil {
		return err
	}
	pv := v.Profile
	if pv == nil {
		return violation("profile payload missing")
	}
	if len(pv.Favorites) != favorites {
		return violation("%d favorites, want %d", len(pv.Favorites), favorites)
	}
	if pv.WatchedCount != watched {
		return violation("watched_count=%d, want %d", pv.WatchedCount, watched)
	}
	if len(pv.TopGenres) > maxTopGenres {
		return violation("%d top genres", len(pv.TopGenres))
	}
	for i, g := range pv.TopGenres {
		if g.Share < 0 || g.Share > 1 {
			return violation("genre %q share %v out of range", g.Genre, g.Share)
		}
		if i > 0 && g.Count > pv.TopGenres[i-1].Count {
			return violation("top genres not ordered by count")
		}
	}
	return nil
}
