package joinstrategy

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// NestedLoop joins two entries by rescanning the right side for every left
// row through a fresh cursor over a shared buffer.
//
// Inner: emit each compatible merge.
// Optional: additionally emit a left row alone when nothing matched it.
// Minus: emit a left row only when no right row eliminates it.
type NestedLoop struct {
	desc join.Descriptor
}

// NewNestedLoop returns the nested-loop strategy for t.
func NewNestedLoop(t join.LogicalType) *NestedLoop {
	name := "nested-loop"
	if t != join.Inner {
		name = fmt.Sprintf("%s-nested-loop", t)
	}
	return &NestedLoop{desc: join.Descriptor{
		Name:            name,
		Type:            t,
		MinEntries:      2,
		MaxEntries:      2,
		CanHandleUndefs: true,
	}}
}

func (s *NestedLoop) Name() string { return s.desc.Name }

func (s *NestedLoop) Test(ctx context.Context, a *join.Action) (join.TestResult, error) {
	mds, fail, err := s.desc.Gate(ctx, a)
	if err != nil || fail != nil {
		return deref(fail), err
	}
	l, r := mds[0].Cardinality.Value, mds[1].Cardinality.Value
	return join.Pass(join.Coefficients{
		Iterations:     l * r,
		PersistedItems: r,
		BlockingItems:  0,
		RequestTime:    metadata.SumRequestTime(mds...),
	}), nil
}

func (s *NestedLoop) Run(_ context.Context, a *join.Action) (*join.Output, error) {
	left := a.Entries[0].Output.Stream
	right := stream.NewBuffered(a.Entries[1].Output.Stream)

	var (
		current bindings.Bindings
		cursor  stream.Stream
		matched bool
	)
	endScan := func() error {
		err := cursor.Close()
		cursor = nil
		return err
	}

	step := func(ctx context.Context) (bindings.Bindings, error) {
		for {
			if cursor == nil {
				row, err := left.Next(ctx)
				if err != nil {
					return bindings.Bindings{}, err
				}
				current, matched, cursor = row, false, right.Cursor()
			}

			r, err := cursor.Next(ctx)
			if errors.Is(err, stream.Done) {
				if cerr := endScan(); cerr != nil {
					return bindings.Bindings{}, cerr
				}
				if !matched && s.desc.Type != join.Inner {
					return current, nil
				}
				continue
			}
			if err != nil {
				return bindings.Bindings{}, err
			}

			switch s.desc.Type {
			case join.Minus:
				if minusEliminates(current, r) {
					matched = true
					if cerr := endScan(); cerr != nil {
						return bindings.Bindings{}, cerr
					}
				}
			default:
				if merged, ok := current.Merge(r); ok {
					matched = true
					return merged, nil
				}
			}
		}
	}

	closeCursor := closerFunc(func() error {
		if cursor != nil {
			return endScan()
		}
		return nil
	})

	var derive join.MetadataFunc
	switch s.desc.Type {
	case join.Optional:
		derive = join.OptionalMetadata
	case join.Minus:
		derive = join.MinusMetadata
	default:
		derive = join.InnerMetadata
	}

	return &join.Output{
		Stream:   newJoinStream(s.desc.Name, step, closeCursor, left, right),
		Metadata: join.ResultMetadata(a.Entries, derive),
	}, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
