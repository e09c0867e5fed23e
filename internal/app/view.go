package service

import (
	"github.com/okian/cinemind/internal/domain/affinity"
	"github.com/okian/cinemind/internal/domain/explain"
	"github.com/okian/cinemind/internal/domain/movie"
	"github.com/okian/cinemind/internal/domain/selection"
)

// View limits.
const (
	MaxSuggestions    = 6
	MaxAllMovies      = 20
	SectionRecommends = "Recommended for You"
	SectionAllMovies  = "All Movies"
)

// Card is a movie as rendered on a page.
type Card struct {
	movie.Record
	Selected bool            `json:"selected,omitempty"`
	Watched  bool            `json:"watched"`
	Reason   *explain.Reason `json:"reason,omitempty"`
}

// Section is a titled row of cards.
type Section struct {
	Title  string `json:"title"`
	Movies []Card `json:"movies"`
}

// OnboardingView is the taste-profile picker.
type OnboardingView struct {
	Query       string         `json:"query"`
	Results     []Card         `json:"results"`
	Suggestions []Card         `json:"suggestions"`
	Selection   []movie.Record `json:"selection"`
	Selected    int            `json:"selected"`
	Slots       int            `json:"slots"`
	CanContinue bool           `json:"can_continue"`
}

// HomeView is the personalised feed.
type HomeView struct {
	Sections     []Section `json:"sections"`
	WatchedCount int       `json:"watched_count"`
}

// ProfileView summarises the user's taste.
type ProfileView struct {
	User         User             `json:"user"`
	Favorites    []movie.Record   `json:"favorites"`
	TopGenres    []affinity.Genre `json:"top_genres"`
	Watched      []movie.Record   `json:"watched"`
	WatchedCount int              `json:"watched_count"`
}

// View is the state of the current page. Exactly one of the page payloads is
// set for onboarding, home and profile; landing and auth carry none.
type View struct {
	SessionID  string          `json:"session_id"`
	Page       Page            `json:"page"`
	User       *User           `json:"user,omitempty"`
	Onboarding *OnboardingView `json:"onboarding,omitempty"`
	Home       *HomeView       `json:"home,omitempty"`
	Profile    *ProfileView    `json:"profile,omitempty"`
}

// view renders s. Callers hold s.mu.
func (s *Session) view() View {
	v := View{SessionID: s.ID, Page: s.Page}
	if s.User != nil {
		u := *s.User
		v.User = &u
	}

	switch s.Page {
	case PageOnboarding:
		v.Onboarding = s.onboardingView()
	case PageHome:
		v.Home = s.homeView()
	case PageProfile:
		v.Profile = s.profileView()
	}
	return v
}

func (s *Session) onboardingView() *OnboardingView {
	ov := &OnboardingView{
		Query:       s.Query,
		Results:     make([]Card, 0, len(s.Results)),
		Suggestions: []Card{},
		Selection:   s.Selection.Items(),
		Selected:    s.Selection.Len(),
		Slots:       selection.MaxSize,
		CanContinue: s.Selection.Full(),
	}
	for _, m := range s.Results {
		ov.Results = append(ov.Results, Card{Record: m, Selected: s.Selection.Contains(m.ID), Watched: s.Watched.Contains(m.ID)})
	}
	if s.Selection.Len() == 0 && s.Query == "" {
		for i, m := range s.Catalog {
			if i == MaxSuggestions {
				break
			}
			ov.Suggestions = append(ov.Suggestions, Card{Record: m, Watched: s.Watched.Contains(m.ID)})
		}
	}
	return ov
}

func (s *Session) homeView() *HomeView {
	seed := s.favoriteSeed()
	card := func(m movie.Record) Card {
		r := explain.For(m, seed)
		return Card{Record: m, Watched: s.Watched.Contains(m.ID), Reason: &r}
	}

	recs := make([]Card, 0, len(s.Recommendations))
	for _, m := range s.Recommendations {
		recs = append(recs, card(m))
	}
	all := make([]Card, 0, MaxAllMovies)
	for i, m := range s.HomeCatalog {
		if i == MaxAllMovies {
			break
		}
		all = append(all, card(m))
	}

	return &HomeView{
		Sections: []Section{
			{Title: SectionRecommends, Movies: recs},
			{Title: SectionAllMovies, Movies: all},
		},
		WatchedCount: s.Watched.Len(),
	}
}

func (s *Session) profileView() *ProfileView {
	pv := &ProfileView{
		User:         User{Name: s.userName()},
		Favorites:    append([]movie.Record{}, s.Favorites...),
		TopGenres:    affinity.Top(s.Favorites),
		Watched:      []movie.Record{},
		WatchedCount: s.Watched.Len(),
	}
	if s.User != nil {
		pv.User.Email = s.User.Email
	}

	// Watched ids come from catalog pages or the recommendation list; resolve
	// against both and keep the id order stable.
	for _, id := range s.Watched.IDs() {
		if m, ok := movie.Find(s.ProfileCatalog, id); ok {
			pv.Watched = append(pv.Watched, m)
			continue
		}
		if m, ok := movie.Find(s.Recommendations, id); ok {
			pv.Watched = append(pv.Watched, m)
		}
	}
	return pv
}
