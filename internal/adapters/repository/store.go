// Package repository holds live sessions in memory.
package repository

import "context"

// Eviction reasons reported to metrics.
const (
	ReasonIdle     = "idle"
	ReasonCapacity = "capacity"
	ReasonEnded    = "ended"
)

// Store provides keyed access to live session state.
type Store[T any] interface {
	// Put stores v under id. Returns ErrDuplicateID if id is already live.
	Put(ctx context.Context, id string, v T) error

	// Get returns the value for id and marks it as recently used.
	// Returns ErrNotFound if id is unknown or idle-expired.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes id. Returns ErrNotFound if id is unknown.
	Delete(ctx context.Context, id string) error

	// Len returns the number of live entries.
	Len(ctx context.Context) int
}
