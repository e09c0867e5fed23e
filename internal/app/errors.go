package service

import "errors"

// Sentinel kinds for session controller errors.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnknownPage         = errors.New("unknown page")
	ErrUnknownMovie        = errors.New("movie not in catalog")
	ErrSelectionIncomplete = errors.New("selection incomplete")
	ErrWrongPage           = errors.New("not available on the current page")
)
