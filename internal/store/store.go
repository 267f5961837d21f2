// Package store holds the client-side state stores: an observable state
// container plus the cart and session stores built on it.
package store

import (
	"sync"
)

// Store is an observable state container. Reads return the last committed
// state; Update serializes read-modify-write transitions under a single
// mutex so two rapid transitions never lose a write, and commits by whole-
// state replacement so subscribers only ever observe complete states.
type Store[S any] struct {
	mu      sync.Mutex
	state   S
	subs    map[int]func(S)
	nextSub int
}

// New returns a store holding the initial state.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state: initial,
		subs:  make(map[int]func(S)),
	}
}

// Get returns the last committed state.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies fn to the current state and commits the result atomically,
// then notifies subscribers with the new state. fn must not call back into
// the store. The committed state is returned.
func (s *Store[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	next := fn(s.state)
	s.state = next
	subs := make([]func(S), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	// Notify outside the lock so a subscriber may read or update the store.
	for _, sub := range subs {
		sub(next)
	}
	return next
}

// Subscribe registers fn to run after every commit. The returned cancel
// function removes the subscription; calling it more than once is harmless.
func (s *Store[S]) Subscribe(fn func(S)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
