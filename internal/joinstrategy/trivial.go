package joinstrategy

import (
	"context"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// None joins zero entries into the identity: one empty row.
type None struct {
	desc join.Descriptor
}

// NewNone returns the zero-entry strategy.
func NewNone() *None {
	return &None{desc: join.Descriptor{Name: "none", Type: join.Inner, MinEntries: 0, MaxEntries: 0, CanHandleUndefs: true}}
}

func (s *None) Name() string { return s.desc.Name }

func (s *None) Test(ctx context.Context, a *join.Action) (join.TestResult, error) {
	_, fail, err := s.desc.Gate(ctx, a)
	if err != nil || fail != nil {
		return deref(fail), err
	}
	return join.Pass(join.Coefficients{}), nil
}

func (s *None) Run(context.Context, *join.Action) (*join.Output, error) {
	md := &metadata.Metadata{
		State:       metadata.NewValidationState(),
		Cardinality: metadata.ExactCardinality(1),
	}
	return &join.Output{
		Stream:   stream.Single(bindings.New()),
		Metadata: metadata.Static(md),
	}, nil
}

// Single passes a lone entry through untouched.
type Single struct {
	desc join.Descriptor
}

// NewSingle returns the one-entry strategy.
func NewSingle() *Single {
	return &Single{desc: join.Descriptor{Name: "single", Type: join.Inner, MinEntries: 1, MaxEntries: 1, CanHandleUndefs: true}}
}

func (s *Single) Name() string { return s.desc.Name }

func (s *Single) Test(ctx context.Context, a *join.Action) (join.TestResult, error) {
	_, fail, err := s.desc.Gate(ctx, a)
	if err != nil || fail != nil {
		return deref(fail), err
	}
	return join.Pass(join.Coefficients{}), nil
}

func (s *Single) Run(_ context.Context, a *join.Action) (*join.Output, error) {
	out := a.Entries[0].Output
	return &out, nil
}

// MultiEmpty short-circuits a join in which some entry is known to be empty.
// It never reads any entry and closes all of them before returning.
type MultiEmpty struct {
	desc join.Descriptor
}

// NewMultiEmpty returns the empty-entry strategy.
func NewMultiEmpty() *MultiEmpty {
	return &MultiEmpty{desc: join.Descriptor{Name: "multi-empty", Type: join.Inner, MinEntries: 1, MaxEntries: join.Unbounded, CanHandleUndefs: true}}
}

func (s *MultiEmpty) Name() string { return s.desc.Name }

func (s *MultiEmpty) Test(ctx context.Context, a *join.Action) (join.TestResult, error) {
	mds, fail, err := s.desc.Gate(ctx, a)
	if err != nil || fail != nil {
		return deref(fail), err
	}
	for _, md := range mds {
		if md.Cardinality.IsExactZero() {
			return join.Pass(join.Coefficients{}), nil
		}
	}
	return join.Fail(join.CodeNoEmptyEntry, "multi-empty requires an entry with exact cardinality 0"), nil
}

func (s *MultiEmpty) Run(_ context.Context, a *join.Action) (*join.Output, error) {
	if err := join.CloseEntries(a.Entries); err != nil {
		return nil, join.WrapUpstream(err, s.desc.Name)
	}
	return &join.Output{
		Stream: stream.Empty(),
		Metadata: join.ResultMetadata(a.Entries, func(mds []*metadata.Metadata) (metadata.Cardinality, []metadata.Variable) {
			return metadata.ExactCardinality(0), metadata.UnionVariables(mds...)
		}),
	}, nil
}

func deref(r *join.TestResult) join.TestResult {
	if r == nil {
		return join.TestResult{}
	}
	return *r
}
