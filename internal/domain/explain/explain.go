// Package explain produces the "why recommended?" line shown on cards.
package explain

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/okian/cinemind/internal/domain/movie"
)

// Kind is the flavour of an explanation.
type Kind string

const (
	Collaborative Kind = "collaborative"
	GenreBased    Kind = "genre"
)

// Reason is the explanation attached to a card.
type Reason struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// KindFor picks the flavour from a hash of the movie id, so a card always
// shows the same explanation.
func KindFor(id int) Kind {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id))
	if xxhash.Sum64(buf[:])&1 == 1 {
		return Collaborative
	}
	return GenreBased
}

// For builds the reason for m given the title that seeded the feed. An empty
// source falls back to generic wording.
func For(m movie.Record, source string) Reason {
	switch KindFor(m.ID) {
	case Collaborative:
		who := source
		if who == "" {
			who = "your favorites"
		}
		return Reason{Kind: Collaborative, Text: "Users who liked " + who + " also loved this"}
	default:
		what := source
		if what == "" {
			what = "your picks"
		}
		genre := "Drama"
		if len(m.Genres) > 0 {
			genre = m.Genres[0]
		}
		return Reason{Kind: GenreBased, Text: "Shares " + genre + " genre with " + what}
	}
}
