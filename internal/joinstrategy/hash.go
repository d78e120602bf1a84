package joinstrategy

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// Hash joins two entries on their shared variables through a
// bindingsindex-backed hash table.
//
// Inner: build on the smaller side, probe with the other.
// Optional: build on the left, probe with the right, then flush the left
// rows nothing matched.
// Minus: build on the right and drop every left row it eliminates.
//
// The table uses the undef-aware trie when a key variable may be unbound on
// either side; rows that leave a key unbound then match every probe term
// for it, which is exactly SPARQL compatibility on that variable.
type Hash struct {
	desc join.Descriptor
}

// NewHash returns the hash strategy for t.
func NewHash(t join.LogicalType) *Hash {
	name := "hash"
	if t != join.Inner {
		name = fmt.Sprintf("%s-hash", t)
	}
	return &Hash{desc: join.Descriptor{
		Name:                    name,
		Type:                    t,
		MinEntries:              2,
		MaxEntries:              2,
		RequiresSharedVariables: true,
		CanHandleUndefs:         true,
	}}
}

func (s *Hash) Name() string { return s.desc.Name }

func (s *Hash) Test(ctx context.Context, a *join.Action) (join.TestResult, error) {
	mds, fail, err := s.desc.Gate(ctx, a)
	if err != nil || fail != nil {
		return deref(fail), err
	}
	l, r := mds[0].Cardinality.Value, mds[1].Cardinality.Value
	c := join.Coefficients{
		Iterations:  l + r,
		RequestTime: metadata.SumRequestTime(mds...),
	}
	switch s.desc.Type {
	case join.Optional:
		c.PersistedItems, c.BlockingItems = l, l
	case join.Minus:
		c.PersistedItems, c.BlockingItems = r, r
	default:
		c.PersistedItems, c.BlockingItems = math.Min(l, r), math.Min(l, r)
	}
	return join.Pass(c), nil
}

func (s *Hash) Run(ctx context.Context, a *join.Action) (*join.Output, error) {
	mds, err := join.Metadatas(ctx, a.Entries)
	if err != nil {
		return nil, errors.CombineErrors(err, join.CloseEntries(a.Entries))
	}
	keys := metadata.SharedVariables(mds...)
	table := newHashTable(keys, metadata.AnyUndef(keys, mds...))

	var step func(ctx context.Context) (bindings.Bindings, error)
	var derive join.MetadataFunc
	switch s.desc.Type {
	case join.Optional:
		step = s.optionalStep(table, a.Entries[0].Output.Stream, a.Entries[1].Output.Stream)
		derive = join.OptionalMetadata
	case join.Minus:
		step = s.minusStep(table, a.Entries[0].Output.Stream, a.Entries[1].Output.Stream)
		derive = join.MinusMetadata
	default:
		build, probe := a.Entries[0].Output.Stream, a.Entries[1].Output.Stream
		if mds[1].Cardinality.Value < mds[0].Cardinality.Value {
			build, probe = probe, build
		}
		step = s.innerStep(table, build, probe)
		derive = join.InnerMetadata
	}

	return &join.Output{
		Stream:   newJoinStream(s.desc.Name, step, closers(a.Entries)...),
		Metadata: join.ResultMetadata(a.Entries, derive),
	}, nil
}

func (s *Hash) innerStep(table *hashTable, build, probe stream.Stream) func(context.Context) (bindings.Bindings, error) {
	var pending rowQueue
	return func(ctx context.Context) (bindings.Bindings, error) {
		if err := table.fill(ctx, build); err != nil {
			return bindings.Bindings{}, err
		}
		for {
			if row, ok := pending.pop(); ok {
				return row, nil
			}
			p, err := probe.Next(ctx)
			if err != nil {
				return bindings.Bindings{}, err
			}
			for _, c := range table.candidates(p) {
				if merged, ok := p.Merge(c.row); ok {
					pending.push(merged)
				}
			}
		}
	}
}

func (s *Hash) optionalStep(table *hashTable, left, right stream.Stream) func(context.Context) (bindings.Bindings, error) {
	var pending rowQueue
	flushed := false
	return func(ctx context.Context) (bindings.Bindings, error) {
		if err := table.fill(ctx, left); err != nil {
			return bindings.Bindings{}, err
		}
		for {
			if row, ok := pending.pop(); ok {
				return row, nil
			}
			if flushed {
				return bindings.Bindings{}, stream.Done
			}
			p, err := right.Next(ctx)
			if errors.Is(err, stream.Done) {
				for _, c := range table.all() {
					if !c.matched {
						pending.push(c.row)
					}
				}
				flushed = true
				continue
			}
			if err != nil {
				return bindings.Bindings{}, err
			}
			for _, c := range table.candidates(p) {
				if merged, ok := c.row.Merge(p); ok {
					c.matched = true
					pending.push(merged)
				}
			}
		}
	}
}

func (s *Hash) minusStep(table *hashTable, left, right stream.Stream) func(context.Context) (bindings.Bindings, error) {
	return func(ctx context.Context) (bindings.Bindings, error) {
		if err := table.fill(ctx, right); err != nil {
			return bindings.Bindings{}, err
		}
		for {
			l, err := left.Next(ctx)
			if err != nil {
				return bindings.Bindings{}, err
			}
			if !s.eliminated(table, l) {
				return l, nil
			}
		}
	}
}

func (s *Hash) eliminated(table *hashTable, l bindings.Bindings) bool {
	if !l.HasAny(table.keys) {
		return false
	}
	if !table.undefs {
		return table.contains(l)
	}
	for _, c := range table.candidates(l) {
		if minusEliminates(l, c.row) {
			return true
		}
	}
	return false
}
