package walkthrough

import "time"

// Journey constants.
const (
	favoritePicks      = 5
	maxSuggestions     = 6
	maxSearchResults   = 10
	maxRecommendations = 50
	maxAllMovies       = 20
	maxTopGenres       = 3
	maxBodyBytes       = 4 << 20
	progressInterval   = time.Second
)

// fillerQueries are typed when the configured queries did not yield enough
// distinct picks to complete onboarding.
var fillerQueries = []string{"a", "e", "o", "i", "u", "s", "t", "r", "n"}
