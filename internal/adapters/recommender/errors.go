package recommender

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Typed errors below match them through errors.Is.
var (
	ErrFetch = errors.New("recommender fetch failed")
	ErrParse = errors.New("recommender response malformed")

	// errCallerGone marks a call abandoned by its caller. The breaker ignores it.
	errCallerGone = errors.New("caller went away")
)

// FetchError reports a transport failure, a rejected call, or a non-OK status.
type FetchError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d", ErrFetch, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", ErrFetch, e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ParseError reports a body that is not JSON or not the expected shape.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrParse, e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
