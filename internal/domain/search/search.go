// Package search filters a catalog by title.
package search

import (
	"strings"

	"github.com/okian/cinemind/internal/domain/movie"
)

// MaxResults caps the number of matches returned by Filter.
const MaxResults = 10

// Filter returns, in catalog order, the first MaxResults records whose title
// contains query case-insensitively. A blank query yields an empty result.
func Filter(catalog []movie.Record, query string) []movie.Record {
	out := make([]movie.Record, 0, MaxResults)
	if strings.TrimSpace(query) == "" {
		return out
	}
	needle := strings.ToLower(query)
	for _, m := range catalog {
		if !strings.Contains(strings.ToLower(m.Title), needle) {
			continue
		}
		out = append(out, m)
		if len(out) == MaxResults {
			break
		}
	}
	return out
}
