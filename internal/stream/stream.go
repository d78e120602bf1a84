// Package stream provides pull-based streams of solution bindings.
//
// A Stream is consumed by calling Next until it returns Done or an error.
// Consumers must Close every stream they own, including after errors;
// Close is idempotent and releases upstream resources promptly.
package stream

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
)

// Done is returned by Next when the stream is exhausted.
var Done = errors.New("no more bindings")

// Stream is a pull-based sequence of bindings.
type Stream interface {
	// Next returns the next row, Done at the end, or an error.
	Next(ctx context.Context) (bindings.Bindings, error)
	// Close releases the stream. Next returns Done after Close.
	Close() error
}

// sliceStream serves rows from memory.
type sliceStream struct {
	mu     sync.Mutex
	rows   []bindings.Bindings
	pos    int
	closed bool
}

// FromSlice returns a stream over rows.
func FromSlice(rows ...bindings.Bindings) Stream {
	return &sliceStream{rows: rows}
}

// Empty returns a stream with no rows.
func Empty() Stream {
	return &sliceStream{}
}

// Single returns a stream with exactly one row.
func Single(row bindings.Bindings) Stream {
	return &sliceStream{rows: []bindings.Bindings{row}}
}

func (s *sliceStream) Next(ctx context.Context) (bindings.Bindings, error) {
	if err := ctx.Err(); err != nil {
		return bindings.Bindings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pos >= len(s.rows) {
		return bindings.Bindings{}, Done
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *sliceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rows = nil
	return nil
}

// funcStream adapts a pair of functions.
type funcStream struct {
	next      func(ctx context.Context) (bindings.Bindings, error)
	close     func() error
	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// FromFunc builds a stream from a next function and an optional close
// function. close runs at most once.
func FromFunc(next func(ctx context.Context) (bindings.Bindings, error), close func() error) Stream {
	return &funcStream{next: next, close: close}
}

func (s *funcStream) Next(ctx context.Context) (bindings.Bindings, error) {
	if s.closed {
		return bindings.Bindings{}, Done
	}
	return s.next(ctx)
}

func (s *funcStream) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		if s.close != nil {
			s.closeErr = s.close()
		}
	})
	return s.closeErr
}

// failing is a stream whose first pull fails.
type failing struct {
	err error
}

// Failing returns a stream that reports err on every Next.
func Failing(err error) Stream {
	return &failing{err: err}
}

func (f *failing) Next(context.Context) (bindings.Bindings, error) {
	return bindings.Bindings{}, f.err
}

func (f *failing) Close() error { return nil }

// Collect drains s and closes it.
func Collect(ctx context.Context, s Stream) (rows []bindings.Bindings, err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		row, err := s.Next(ctx)
		if errors.Is(err, Done) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// CloseAll closes every stream and combines their errors.
func CloseAll(streams ...Stream) error {
	var combined error
	for _, s := range streams {
		if s == nil {
			continue
		}
		combined = errors.CombineErrors(combined, s.Close())
	}
	return combined
}
