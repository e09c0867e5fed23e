// Package affinity derives a user's favourite genres from their picks.
package affinity

import (
	"sort"

	"github.com/okian/cinemind/internal/domain/movie"
)

// TopN is the number of genres reported.
const TopN = 3

// Genre is one entry of the affinity breakdown. Share is Count divided by the
// number of picks, so it is in [0,1] as long as a movie lists a genre once.
type Genre struct {
	Genre string  `json:"genre"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Top returns up to TopN genres by descending count. Ties keep the order in
// which genres first appear across picks. An empty input yields an empty,
// non-nil result.
func Top(picks []movie.Record) []Genre {
	var (
		order  []string
		counts = make(map[string]int)
	)
	for _, m := range picks {
		for _, g := range m.Genres {
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	out := make([]Genre, 0, len(order))
	for _, g := range order {
		out = append(out, Genre{Genre: g, Count: counts[g]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > TopN {
		out = out[:TopN]
	}

	total := len(picks)
	for i := range out {
		if total == 0 {
			out[i].Share = 0
			continue
		}
		out[i].Share = float64(out[i].Count) / float64(total)
	}
	return out
}
