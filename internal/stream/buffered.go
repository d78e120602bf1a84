package stream

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
)

// Buffered shares one source stream between independent cursors.
//
// Rows pulled from the source are kept in a shared buffer; each cursor keeps
// its own read offset, so a cursor created late replays everything already
// pulled before reading further. The source is pulled at most once per row.
//
// The Buffered value itself holds one reference. The source is closed once
// the owner has called Close and every cursor is closed.
type Buffered struct {
	mu     sync.Mutex
	src    Stream
	rows   []bindings.Bindings
	err    error
	done   bool
	refs   int
	closed bool
	owner  bool
}

// NewBuffered wraps src. The caller owns the returned value and must Close it.
func NewBuffered(src Stream) *Buffered {
	return &Buffered{src: src, refs: 1, owner: true}
}

// Cursor returns a new independent reader positioned at the first row.
func (b *Buffered) Cursor() Stream {
	b.mu.Lock()
	b.refs++
	b.mu.Unlock()
	return &cursor{buf: b}
}

// Len returns how many rows have been buffered so far.
func (b *Buffered) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

// Close drops the owner's reference.
func (b *Buffered) Close() error {
	b.mu.Lock()
	if !b.owner {
		b.mu.Unlock()
		return nil
	}
	b.owner = false
	b.mu.Unlock()
	return b.release()
}

func (b *Buffered) release() error {
	b.mu.Lock()
	b.refs--
	if b.refs > 0 || b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.rows = nil
	src := b.src
	b.mu.Unlock()
	return src.Close()
}

// at returns row i, pulling from the source as needed.
func (b *Buffered) at(ctx context.Context, i int) (bindings.Bindings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.rows) <= i {
		switch {
		case b.err != nil:
			return bindings.Bindings{}, b.err
		case b.done || b.closed:
			return bindings.Bindings{}, Done
		}
		row, err := b.src.Next(ctx)
		if errors.Is(err, Done) {
			b.done = true
			continue
		}
		if err != nil {
			// Context errors belong to this caller, not to the source.
			if ctx.Err() == nil {
				b.err = err
			}
			return bindings.Bindings{}, err
		}
		b.rows = append(b.rows, row)
	}
	return b.rows[i], nil
}

type cursor struct {
	buf    *Buffered
	pos    int
	closed bool
}

func (c *cursor) Next(ctx context.Context) (bindings.Bindings, error) {
	if c.closed {
		return bindings.Bindings{}, Done
	}
	row, err := c.buf.at(ctx, c.pos)
	if err != nil {
		return bindings.Bindings{}, err
	}
	c.pos++
	return row, nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.buf.release()
}
