package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/cinemind/internal/domain/movie"
	"github.com/okian/cinemind/internal/domain/selection"
	"github.com/okian/cinemind/internal/domain/watched"
)

// DefaultUserName is shown when sign-in supplied no name.
const DefaultUserName = "Movie Lover"

// User is the signed-in profile. Credentials are never checked.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the application state of one visitor. All fields are guarded
// by mu; fetches run without holding it and are applied only if visit has
// not moved on.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	Page      Page
	User      *User

	// onboarding
	Catalog   []movie.Record
	Query     string
	Results   []movie.Record
	Selection selection.Set

	// set by Continue
	Favorites []movie.Record
	Watched   watched.Set

	// home
	HomeCatalog     []movie.Record
	Recommendations []movie.Record

	// profile
	ProfileCatalog []movie.Record

	visit uint64
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:              id,
		CreatedAt:       now,
		Page:            PageLanding,
		Catalog:         []movie.Record{},
		Results:         []movie.Record{},
		Favorites:       []movie.Record{},
		HomeCatalog:     []movie.Record{},
		Recommendations: []movie.Record{},
		ProfileCatalog:  []movie.Record{},
	}
}

func (s *Session) userName() string {
	if s.User == nil || s.User.Name == "" {
		return DefaultUserName
	}
	return s.User.Name
}

func (s *Session) favoriteSeed() string {
	if len(s.Favorites) == 0 {
		return ""
	}
	return s.Favorites[0].Title
}

func (s *Session) clearSearch() {
	s.Query = ""
	s.Results = []movie.Record{}
}

// require reports ErrWrongPage unless the session is on page. Callers hold s.mu.
func (s *Session) require(page Page) error {
	if s.Page != page {
		return fmt.Errorf("%w: on %s, need %s", ErrWrongPage, s.Page, page)
	}
	return nil
}
