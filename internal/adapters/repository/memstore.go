package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/cinemind/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultCapacity    = 10_000
	defaultIdleTimeout = 30 * time.Minute
)

type entry[T any] struct {
	id       string
	value    T
	lastSeen time.Time
}

// MemoryStore is a bounded, idle-expiring Store. Entries are kept in a
// recency list (front = most recent) so capacity eviction and sweeps touch
// only the stale tail.
type MemoryStore[T any] struct {
	cfg config

	mu    sync.Mutex
	byID  map[string]*list.Element
	order *list.List

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

var _ Store[int] = (*MemoryStore[int])(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore[T any](opts ...Option) *MemoryStore[T] {
	cfg := config{
		capacity:    defaultCapacity,
		idleTimeout: defaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MemoryStore[T]{
		cfg:      cfg,
		byID:     make(map[string]*list.Element),
		order:    list.New(),
		stopChan: make(chan struct{}),
	}
}

// Put implements Store.Put.
func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byID[id]; ok {
		if !s.expired(el.Value.(*entry[T])) {
			return ErrDuplicateID
		}
		s.removeLocked(el, ReasonIdle)
	}

	for s.order.Len() >= s.cfg.capacity {
		s.removeLocked(s.order.Back(), ReasonCapacity)
	}

	s.byID[id] = s.order.PushFront(&entry[T]{id: id, value: v, lastSeen: s.cfg.now()})
	metrics.UpdateActiveSessions(s.order.Len())
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	el, ok := s.byID[id]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*entry[T])
	if s.expired(e) {
		s.removeLocked(el, ReasonIdle)
		return zero, ErrNotFound
	}
	e.lastSeen = s.cfg.now()
	s.order.MoveToFront(el)
	return e.value, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.removeLocked(el, ReasonEnded)
	return nil
}

// Len implements Store.Len. Expired entries not yet swept are counted.
func (s *MemoryStore[T]) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Sweep removes every idle-expired entry and returns how many it removed.
func (s *MemoryStore[T]) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for el := s.order.Back(); el != nil; {
		if !s.expired(el.Value.(*entry[T])) {
			break
		}
		prev := el.Prev()
		s.removeLocked(el, ReasonIdle)
		removed++
		el = prev
	}
	return removed
}

// StartJanitor sweeps expired entries every interval until ctx is done or
// Close is called.
func (s *MemoryStore[T]) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.cfg.idleTimeout / 2
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Close stops the janitor and waits for it to exit.
func (s *MemoryStore[T]) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore[T]) expired(e *entry[T]) bool {
	return s.cfg.now().Sub(e.lastSeen) >= s.cfg.idleTimeout
}

func (s *MemoryStore[T]) removeLocked(el *list.Element, reason string) {
	e := el.Value.(*entry[T])
	s.order.Remove(el)
	delete(s.byID, e.id)
	metrics.RecordSessionEvicted(reason)
	metrics.UpdateActiveSessions(s.order.Len())
}
