package store

import (
	"sort"
	"sync"
)

// Store holds a single observable value. Subscribers are notified after
// every accepted Set, outside the lock, in subscription order.
type Store[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[uint64]func(T)
	next   uint64
	closed bool
}

// New constructs a store seeded with initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  map[uint64]func(T){},
	}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	if s == nil {
		var zero T
		return zero
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set publishes value. It returns false once the store is closed.
func (s *Store[T]) Set(value T) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.value = value
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
	return true
}

// Update applies fn to the current value and publishes the result.
func (s *Store[T]) Update(fn func(T) T) bool {
	if s == nil || fn == nil {
		return false
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.value = fn(s.value)
	value := s.value
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
	return true
}

// Subscribe registers fn and returns a function that removes it. Subscribing
// to a closed store is a no-op.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close drops every subscriber and rejects later publications.
func (s *Store[T]) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = map[uint64]func(T){}
}

// Closed reports whether Close was called.
func (s *Store[T]) Closed() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store[T]) snapshot() []func(T) {
	if len(s.subs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]func(T), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}
