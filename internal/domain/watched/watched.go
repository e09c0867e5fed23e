// Package watched tracks which movie ids a user has marked as watched.
package watched

import "sort"

// Set is an unbounded set of movie ids. The zero value is empty and ready
// to use. Set is not safe for concurrent use.
type Set struct {
	ids map[int]struct{}
}

// Toggle flips membership of id and reports whether it is now watched.
func (s *Set) Toggle(id int) bool {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether id is watched.
func (s *Set) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of watched ids.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the watched ids in ascending order.
func (s *Set) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
