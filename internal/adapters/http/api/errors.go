package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidMovieID = errors.New("movie id must be a positive integer")
	ErrInvalidBody    = errors.New("request body must be a JSON object")
)
