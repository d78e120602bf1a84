package stream

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
)

// ErrClosed is returned by emit once the consumer has closed the stream.
var ErrClosed = errors.New("stream closed")

// ProduceFunc generates rows by calling emit. It must return promptly once
// emit reports an error or ctx is cancelled.
type ProduceFunc func(ctx context.Context, emit func(bindings.Bindings) error) error

// producer runs a ProduceFunc on its own goroutine and hands rows to the
// consumer through an unbounded queue.
type producer struct {
	q       *rowQueue
	cancel  context.CancelFunc
	exited  chan struct{}
	startFn func()

	startOnce sync.Once
	closeOnce sync.Once
	finished  bool
}

// Produce returns a stream fed by fn. The goroutine starts on the first Next,
// so an unread stream costs nothing. Close cancels fn's context and waits for
// it to return.
func Produce(ctx context.Context, fn ProduceFunc) Stream {
	ctx, cancel := context.WithCancel(ctx)
	p := &producer{
		q:      newRowQueue(),
		cancel: cancel,
		exited: make(chan struct{}),
	}
	p.startFn = func() {
		go p.run(ctx, fn)
	}
	return p
}

func (p *producer) run(ctx context.Context, fn ProduceFunc) {
	defer close(p.exited)
	defer p.q.Close()

	err := fn(ctx, func(row bindings.Bindings) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.q.Enqueue(item{row: row}) {
			return ErrClosed
		}
		return nil
	})
	if err != nil && ctx.Err() == nil && !errors.Is(err, ErrClosed) {
		p.q.Enqueue(item{err: err})
	}
}

func (p *producer) Next(ctx context.Context) (bindings.Bindings, error) {
	if p.finished {
		return bindings.Bindings{}, Done
	}
	p.startOnce.Do(p.startFn)

	for {
		if it, ok := p.q.TryDequeue(); ok {
			if it.err != nil {
				p.finished = true
				return bindings.Bindings{}, it.err
			}
			return it.row, nil
		}
		if p.q.Drained() {
			p.finished = true
			return bindings.Bindings{}, Done
		}
		select {
		case <-ctx.Done():
			return bindings.Bindings{}, ctx.Err()
		case <-p.q.Wait():
		}
	}
}

func (p *producer) Close() error {
	p.closeOnce.Do(func() {
		p.finished = true
		p.cancel()
		started := true
		p.startOnce.Do(func() { started = false })
		p.q.Discard()
		if started {
			<-p.exited
		}
	})
	return nil
}
