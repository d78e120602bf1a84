package metadata

import "sync"

// ValidationState is a one-shot invalidation signal.
//
// A state starts valid. Invalidate flips it to invalid exactly once and fires
// every registered listener at most once. Listeners added after invalidation
// fire immediately, so a late subscriber never misses the signal.
//
// Safe for concurrent use.
type ValidationState struct {
	mu        sync.Mutex
	invalid   bool
	listeners []func()
}

// NewValidationState returns a valid state with no listeners.
func NewValidationState() *ValidationState {
	return &ValidationState{}
}

// Valid reports whether the state has not been invalidated.
func (s *ValidationState) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.invalid
}

// AddInvalidateListener registers fn to run on invalidation.
func (s *ValidationState) AddInvalidateListener(fn func()) {
	s.mu.Lock()
	if s.invalid {
		s.mu.Unlock()
		fn()
		return
	}
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Invalidate marks the state invalid and fires all listeners.
// Subsequent calls are no-ops.
//
// Listeners run on the caller's goroutine, outside the lock, so a listener
// may invalidate other states or register further listeners.
func (s *ValidationState) Invalidate() {
	s.mu.Lock()
	if s.invalid {
		s.mu.Unlock()
		return
	}
	s.invalid = true
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Chain returns a new state that is invalidated as soon as any of the given
// states is invalidated. Nil states are skipped.
func Chain(states ...*ValidationState) *ValidationState {
	out := NewValidationState()
	for _, s := range states {
		if s != nil {
			s.AddInvalidateListener(out.Invalidate)
		}
	}
	return out
}
