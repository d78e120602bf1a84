// Package testutil provides stream and entry builders shared by the join
// tests, the scenario harness and the CLI.
package testutil

import (
	"context"
	"sync"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// TrackedStream wraps a stream and records how it was used.
//
// Thread-safe: counters are guarded by a mutex so tests may inspect them
// while a producer goroutine is pulling.
type TrackedStream struct {
	inner stream.Stream

	mu     sync.Mutex
	reads  int
	closes int
}

// Track wraps s.
func Track(s stream.Stream) *TrackedStream {
	return &TrackedStream{inner: s}
}

// Next forwards to the wrapped stream and counts the pull.
func (t *TrackedStream) Next(ctx context.Context) (bindings.Bindings, error) {
	t.mu.Lock()
	t.reads++
	t.mu.Unlock()
	return t.inner.Next(ctx)
}

// Close forwards to the wrapped stream and counts the call.
func (t *TrackedStream) Close() error {
	t.mu.Lock()
	t.closes++
	t.mu.Unlock()
	return t.inner.Close()
}

// Reads returns how many times Next was called.
func (t *TrackedStream) Reads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

// Closes returns how many times Close was called.
func (t *TrackedStream) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

// Closed reports whether Close was called at least once.
func (t *TrackedStream) Closed() bool {
	return t.Closes() > 0
}

// ErrorAfter returns a stream that yields rows and then fails with err.
func ErrorAfter(err error, rows ...bindings.Bindings) stream.Stream {
	pos := 0
	return stream.FromFunc(func(ctx context.Context) (bindings.Bindings, error) {
		if pos < len(rows) {
			pos++
			return rows[pos-1], nil
		}
		return bindings.Bindings{}, err
	}, nil)
}
