package joinstrategy

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// joinStream drives a strategy's step function and owns its inputs.
//
// The first input error is marked as an upstream failure, closes every
// input, and is returned by all later pulls. Exhaustion closes the inputs
// too. Close is idempotent.
type joinStream struct {
	strategy string
	step     func(ctx context.Context) (bindings.Bindings, error)
	inputs   []io.Closer

	done      bool
	err       error
	closeOnce sync.Once
	closeErr  error
}

func newJoinStream(strategy string, step func(ctx context.Context) (bindings.Bindings, error), inputs ...io.Closer) *joinStream {
	return &joinStream{strategy: strategy, step: step, inputs: inputs}
}

func (s *joinStream) Next(ctx context.Context) (bindings.Bindings, error) {
	if s.done {
		if s.err != nil {
			return bindings.Bindings{}, s.err
		}
		return bindings.Bindings{}, stream.Done
	}
	row, err := s.step(ctx)
	switch {
	case err == nil:
		return row, nil
	case errors.Is(err, stream.Done):
		s.done = true
		_ = s.Close()
		return bindings.Bindings{}, stream.Done
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		// Cancellation belongs to this caller; the join may be resumed.
		return bindings.Bindings{}, err
	default:
		s.done = true
		s.err = join.WrapUpstream(err, s.strategy)
		_ = s.Close()
		return bindings.Bindings{}, s.err
	}
}

func (s *joinStream) Close() error {
	s.closeOnce.Do(func() {
		for _, c := range s.inputs {
			s.closeErr = errors.CombineErrors(s.closeErr, c.Close())
		}
	})
	return s.closeErr
}

// closers adapts entry streams for newJoinStream.
func closers(entries []join.Entry) []io.Closer {
	out := make([]io.Closer, len(entries))
	for i, e := range entries {
		out[i] = e.Output.Stream
	}
	return out
}

// rowQueue is a FIFO of rows waiting to be emitted.
type rowQueue struct {
	rows []bindings.Bindings
}

func (q *rowQueue) push(rows ...bindings.Bindings) {
	q.rows = append(q.rows, rows...)
}

func (q *rowQueue) pop() (bindings.Bindings, bool) {
	if len(q.rows) == 0 {
		return bindings.Bindings{}, false
	}
	row := q.rows[0]
	q.rows[0] = bindings.Bindings{}
	q.rows = q.rows[1:]
	if len(q.rows) == 0 {
		q.rows = nil
	}
	return row, true
}

// minusEliminates reports whether right removes left under MINUS: the rows
// must be compatible and share at least one bound variable.
func minusEliminates(left, right bindings.Bindings) bool {
	return len(bindings.SharedVariables(left, right)) > 0 && bindings.Compatible(left, right)
}
