// Package signal provides a small observable value.
//
// A [Signal] holds one value of type T. Owners replace it with [Signal.Set], which notifies
// every subscriber synchronously, in subscription order, before returning. Consumers get a
// [ReadOnly] view that can read and subscribe but never write.
package signal

import (
	"sync"
)

// ReadOnly is the consumer side of a [Signal].
type ReadOnly[T any] interface {
	// Get returns a snapshot of the current value.
	Get() T
	// Subscribe registers fn to run after every change and returns a func that removes it.
	Subscribe(fn func(T)) (unsubscribe func())
}

// Signal is a mutable, observable container.
//
// Clone, when set, is applied to every value handed out by Get and to subscribers,
// so callers holding a slice cannot reach the stored backing array.
type Signal[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[uint64]func(T)
	order  []uint64
	nextID uint64
	clone  func(T) T
}

// New creates a [Signal] holding initial. clone may be nil for value types.
func New[T any](initial T, clone func(T) T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
		clone: clone,
	}
}

// Get returns a snapshot of the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copy(s.value)
}

// Set replaces the value and notifies subscribers before returning.
//
// Subscribers run outside the lock and may call Get or Subscribe.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(s.copy(v))
	}
}

// Subscribe registers fn and returns its unsubscribe handle. Calling the handle twice is harmless.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// Len returns the number of active subscribers.
func (s *Signal[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// ReadOnly returns the consumer view of s.
func (s *Signal[T]) ReadOnly() ReadOnly[T] {
	return readOnly[T]{s: s}
}

func (s *Signal[T]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Signal[T]) copy(v T) T {
	if s.clone == nil {
		return v
	}
	return s.clone(v)
}

// readOnly hides Set from consumers that type-assert the interface.
type readOnly[T any] struct {
	s *Signal[T]
}

func (r readOnly[T]) Get() T                      { return r.s.Get() }
func (r readOnly[T]) Subscribe(fn func(T)) func() { return r.s.Subscribe(fn) }

// CloneSlice returns a shallow copy of v, preserving nil-ness as an empty slice.
func CloneSlice[E any](v []E) []E {
	out := make([]E, len(v))
	copy(out, v)
	return out
}
