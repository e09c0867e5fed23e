// Package selection manages the taste-profile picks made during onboarding.
package selection

import "github.com/okian/cinemind/internal/domain/movie"

// MaxSize bounds the number of picks.
const MaxSize = 5

// ChangeKind describes what a toggle did.
type ChangeKind int

const (
	// Ignored means the set was full and the movie was not added.
	Ignored ChangeKind = iota
	// Added means the movie was appended. Callers reset any pending search.
	Added
	// Removed means the movie was already picked and has been dropped.
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "ignored"
	}
}

// Change is the event produced by Toggle.
type Change struct {
	Kind  ChangeKind
	Movie movie.Record
}

// ResetsSearch reports whether the change must clear the pending query.
func (c Change) ResetsSearch() bool { return c.Kind == Added }

// Set is an insertion-ordered set of at most MaxSize movies, unique by id.
// The zero value is an empty set. Set is not safe for concurrent use.
type Set struct {
	items []movie.Record
}

// Toggle removes m if present, appends it if there is room, and otherwise
// leaves the set unchanged.
func (s *Set) Toggle(m movie.Record) Change {
	if i := s.index(m.ID); i >= 0 {
		s.removeAt(i)
		return Change{Kind: Removed, Movie: m}
	}
	if len(s.items) >= MaxSize {
		return Change{Kind: Ignored, Movie: m}
	}
	s.items = append(s.items, m)
	return Change{Kind: Added, Movie: m}
}

// Remove drops id if present and reports whether it did.
func (s *Set) Remove(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

// Contains reports whether id is picked.
func (s *Set) Contains(id int) bool { return s.index(id) >= 0 }

// Len returns the number of picks.
func (s *Set) Len() int { return len(s.items) }

// Full reports whether no more picks fit.
func (s *Set) Full() bool { return len(s.items) >= MaxSize }

// Items returns a copy of the picks in insertion order.
func (s *Set) Items() []movie.Record {
	out := make([]movie.Record, len(s.items))
	copy(out, s.items)
	return out
}

// First returns the earliest pick.
func (s *Set) First() (movie.Record, bool) {
	if len(s.items) == 0 {
		return movie.Record{}, false
	}
	return s.items[0], true
}

func (s *Set) index(id int) int {
	for i, m := range s.items {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Set) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}
