package joinstrategy

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
)

// Mediator runs nested join requests.
type Mediator interface {
	Mediate(ctx context.Context, a *join.Action) (*join.Result, error)
}

// SubJoin is the Operation of an entry produced by joining other entries.
type SubJoin struct {
	Strategy string
	Inputs   []any
}

// MultiSmallest reduces an inner join of three or more entries to pairwise
// joins: it orders the entries with a sorter, joins the first two through
// the mediator, and joins that result with the remaining entries.
type MultiSmallest struct {
	desc     join.Descriptor
	sorter   join.Sorter
	mediator Mediator
}

// NewMultiSmallest returns the multi-way strategy. A nil sorter keeps the
// given entry order.
func NewMultiSmallest(sorter join.Sorter, m Mediator) *MultiSmallest {
	return &MultiSmallest{
		desc: join.Descriptor{
			Name:            "multi-smallest",
			Type:            join.Inner,
			MinEntries:      3,
			MaxEntries:      join.Unbounded,
			CanHandleUndefs: true,
		},
		sorter:   sorter,
		mediator: m,
	}
}

func (s *MultiSmallest) Name() string { return s.desc.Name }

func (s *MultiSmallest) Test(ctx context.Context, a *join.Action) (join.TestResult, error) {
	mds, fail, err := s.desc.Gate(ctx, a)
	if err != nil || fail != nil {
		return deref(fail), err
	}
	product := 1.0
	for _, md := range mds {
		product *= md.Cardinality.Value
	}
	return join.Pass(join.Coefficients{
		Iterations:  product,
		RequestTime: metadata.SumRequestTime(mds...),
	}), nil
}

func (s *MultiSmallest) Run(ctx context.Context, a *join.Action) (*join.Output, error) {
	entries := a.Entries
	if s.sorter != nil {
		sorted, err := s.sorter.Sort(ctx, entries)
		if err != nil {
			return nil, errors.CombineErrors(err, join.CloseEntries(entries))
		}
		entries = sorted
	}

	first := entries[:2]
	rest := append([]join.Entry{}, entries[2:]...)

	// The mediator owns and closes the first two entries from here on.
	pair, err := s.mediator.Mediate(ctx, join.NewAction(ctx, join.Inner, first))
	if err != nil {
		return nil, errors.CombineErrors(err, join.CloseEntries(rest))
	}

	joined := join.Entry{
		Operation: SubJoin{Strategy: pair.Strategy, Inputs: []any{first[0].Operation, first[1].Operation}},
		Output:    pair.Output,
	}
	res, err := s.mediator.Mediate(ctx, join.NewAction(ctx, join.Inner, append([]join.Entry{joined}, rest...)))
	if err != nil {
		return nil, err
	}
	return &res.Output, nil
}
