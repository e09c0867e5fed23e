// Package movie contains the movie record shared by every page of the flow
// and the normalization rule that turns remote titles into records.
package movie

import (
	"strconv"
	"strings"
)

// DefaultPosterBaseURL is the image host used to decorate cards.
const DefaultPosterBaseURL = "https://picsum.photos/300/450"

// Record is a displayable movie. Records are immutable after Normalize
// builds them; callers must not mutate Genres in place.
type Record struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Genres    []string `json:"genres"`
	Rating    float64  `json:"rating"`
	PosterURL string   `json:"poster_url"`
}

// Namespace keeps ids and poster seeds of independently fetched lists apart
// and carries the placeholder metadata stamped on every record of the list.
type Namespace struct {
	Name         string
	IDOffset     int
	PosterOffset int
	Year         int
	Genres       []string
	Rating       float64
}

// Catalog pages share IDOffset 0 so a title keeps its id on every page.
// Only the poster seed differs per page.
var (
	Onboarding = Namespace{Name: "onboarding", IDOffset: 0, PosterOffset: 0, Year: 2020, Genres: []string{"Drama"}, Rating: 8.0}
	Home       = Namespace{Name: "home", IDOffset: 0, PosterOffset: 1000, Year: 2020, Genres: []string{"Drama"}, Rating: 8.0}
	Profile    = Namespace{Name: "profile", IDOffset: 0, PosterOffset: 2000, Year: 2020, Genres: []string{"Drama"}, Rating: 8.0}

	Recommendations = Namespace{Name: "recommendations", IDOffset: 20000, PosterOffset: 20000, Year: 2021, Genres: []string{"Drama", "Action"}, Rating: 8.2}
)

// ID returns the id assigned to the title at position.
func (ns Namespace) ID(position int) int {
	return ns.IDOffset + position + 1
}

// Contains reports whether id falls in the range this namespace assigns for a
// list of n titles.
func (ns Namespace) Contains(id, n int) bool {
	return id > ns.IDOffset && id <= ns.IDOffset+n
}

// PosterURL returns the deterministic poster for position under base.
func (ns Namespace) PosterURL(base string, position int) string {
	if base == "" {
		base = DefaultPosterBaseURL
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "random=" + strconv.Itoa(ns.PosterOffset+position)
}

// Normalize maps titles to records in order. The result is never nil.
func Normalize(titles []string, ns Namespace, posterBase string) []Record {
	out := make([]Record, 0, len(titles))
	for i, title := range titles {
		genres := make([]string, len(ns.Genres))
		copy(genres, ns.Genres)
		out = append(out, Record{
			ID:        ns.ID(i),
			Title:     title,
			Year:      ns.Year,
			Genres:    genres,
			Rating:    ns.Rating,
			PosterURL: ns.PosterURL(posterBase, i),
		})
	}
	return out
}

// Find returns the record with id, if present.
func Find(records []Record, id int) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}
