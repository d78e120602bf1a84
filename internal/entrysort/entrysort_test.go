package entrysort

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunica/comunica-sub013/internal/algebra"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/rdf"
	"github.com/comunica/comunica-sub013/internal/testutil"
)

func withMetadata(name string, card metadata.Cardinality, vars ...string) EntryWithMetadata {
	e, _ := testutil.Entry(testutil.EntrySpec{Name: name, Cardinality: card, Variables: testutil.Vars(vars...)})
	md, err := e.Output.Metadata(context.Background())
	if err != nil {
		panic(err)
	}
	return EntryWithMetadata{Entry: e, Metadata: md}
}

func names(entries []EntryWithMetadata) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Entry.Operation.(string)
	}
	return out
}

func entryNames(entries []join.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = algebra.Describe(e.Operation)
	}
	return out
}

// tableEstimator scores a subset by the score of its last entry, so tests
// control each greedy step directly.
type tableEstimator struct {
	scores map[string]float64
	calls  int
}

func (t *tableEstimator) Estimate(_ context.Context, entries []EntryWithMetadata) (float64, error) {
	t.calls++
	return t.scores[entries[len(entries)-1].Entry.Operation.(string)], nil
}

func TestSelectivityEmptyAndSingle(t *testing.T) {
	est := &tableEstimator{}
	s := NewSelectivity(est)

	out, err := s.SortWithMetadata(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	one := []EntryWithMetadata{withMetadata("A", metadata.ExactCardinality(3), "x")}
	out, err = s.SortWithMetadata(context.Background(), one)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(out))
	assert.Equal(t, 0, est.calls)
}

func TestSelectivityPicksMostRestrictiveFirst(t *testing.T) {
	est := &tableEstimator{scores: map[string]float64{"A": 0.9, "B": 0.1, "C": 0.5}}
	s := NewSelectivity(est)

	in := []EntryWithMetadata{
		withMetadata("A", metadata.ExactCardinality(1)),
		withMetadata("B", metadata.ExactCardinality(1)),
		withMetadata("C", metadata.ExactCardinality(1)),
	}
	out, err := s.SortWithMetadata(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, names(out))
	assert.Equal(t, []string{"A", "B", "C"}, names(in))
	// 3 + 2 + 1 estimates
	assert.Equal(t, 6, est.calls)
}

func TestSelectivityTieKeepsFirstOccurrence(t *testing.T) {
	est := &tableEstimator{scores: map[string]float64{"A": 0.5, "B": 0.2, "C": 0.2}}
	s := NewSelectivity(est)

	in := []EntryWithMetadata{
		withMetadata("A", metadata.ExactCardinality(1)),
		withMetadata("C", metadata.ExactCardinality(1)),
		withMetadata("B", metadata.ExactCardinality(1)),
	}
	out, err := s.SortWithMetadata(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, names(out))
}

func TestSelectivityIsIdempotent(t *testing.T) {
	s := NewSelectivity(CardinalityEstimator{})
	in := []EntryWithMetadata{
		withMetadata("A", metadata.ExactCardinality(300), "x", "y"),
		withMetadata("B", metadata.ExactCardinality(2), "y"),
		withMetadata("C", metadata.EstimateCardinality(40), "z"),
		withMetadata("D", metadata.ExactCardinality(7), "x"),
	}

	first, err := s.SortWithMetadata(context.Background(), in)
	require.NoError(t, err)
	second, err := s.SortWithMetadata(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, names(first), names(second))
	assert.Equal(t, "B", names(first)[0])
}

func TestSelectivityEstimatorError(t *testing.T) {
	failing := EstimatorFunc(func(context.Context, []EntryWithMetadata) (float64, error) {
		return 0, assert.AnError
	})
	s := NewSelectivity(failing)
	in := []EntryWithMetadata{
		withMetadata("A", metadata.ExactCardinality(1)),
		withMetadata("B", metadata.ExactCardinality(1)),
	}
	_, err := s.SortWithMetadata(context.Background(), in)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSelectivitySortResolvesMetadata(t *testing.T) {
	a, _ := testutil.Entry(testutil.EntrySpec{Name: "A", Cardinality: metadata.ExactCardinality(50), Variables: testutil.Vars("x")})
	b, bs := testutil.Entry(testutil.EntrySpec{Name: "B", Cardinality: metadata.ExactCardinality(5), Variables: testutil.Vars("x")})

	out, err := NewSelectivity(nil).Sort(context.Background(), []join.Entry{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, entryNames(out))
	assert.Equal(t, 0, bs.Reads())
}

func TestCardinalityEstimator(t *testing.T) {
	ctx := context.Background()
	est := CardinalityEstimator{}

	small, err := est.Estimate(ctx, []EntryWithMetadata{withMetadata("A", metadata.ExactCardinality(2))})
	require.NoError(t, err)
	large, err := est.Estimate(ctx, []EntryWithMetadata{withMetadata("A", metadata.ExactCardinality(2000))})
	require.NoError(t, err)
	assert.Less(t, small, large)
	assert.Greater(t, small, 0.0)
	assert.LessOrEqual(t, large, 1.0)

	empty, err := est.Estimate(ctx, []EntryWithMetadata{withMetadata("A", metadata.ExactCardinality(0))})
	require.NoError(t, err)
	assert.Greater(t, empty, 0.0)
	assert.Less(t, empty, small)

	disjoint, err := est.Estimate(ctx, []EntryWithMetadata{
		withMetadata("A", metadata.ExactCardinality(10), "x"),
		withMetadata("B", metadata.ExactCardinality(10), "y"),
	})
	require.NoError(t, err)
	connected, err := est.Estimate(ctx, []EntryWithMetadata{
		withMetadata("A", metadata.ExactCardinality(10), "x"),
		withMetadata("B", metadata.ExactCardinality(10), "x"),
	})
	require.NoError(t, err)
	assert.Less(t, connected, disjoint)
}

func patternEntry(name, s, p, o string) EntryWithMetadata {
	op := &algebra.Pattern{Subject: rdf.MustParse(s), Predicate: rdf.MustParse(p), Object: rdf.MustParse(o)}
	e, _ := testutil.Entry(testutil.EntrySpec{Cardinality: metadata.EstimateCardinality(100), Variables: testutil.Vars(algebra.Variables(op)...)})
	e.Operation = op
	md, _ := e.Output.Metadata(context.Background())
	return EntryWithMetadata{Entry: e, Metadata: md}
}

func TestVariableCountingEstimator(t *testing.T) {
	ctx := context.Background()
	est := VariableCountingEstimator{}

	bound, err := est.Estimate(ctx, []EntryWithMetadata{patternEntry("a", "<http://ex/s>", "<http://ex/p>", "?o")})
	require.NoError(t, err)
	open, err := est.Estimate(ctx, []EntryWithMetadata{patternEntry("b", "?s", "<http://ex/p>", "?o")})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/8, bound, 1e-9)
	assert.InDelta(t, 6.0/8, open, 1e-9)

	constant, err := est.Estimate(ctx, []EntryWithMetadata{patternEntry("c", "<http://ex/s>", "<http://ex/p>", "1")})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/16, constant, 1e-9)

	pair, err := est.Estimate(ctx, []EntryWithMetadata{
		patternEntry("a", "?s", "<http://ex/p>", "?o"),
		patternEntry("b", "?o", "<http://ex/q>", "<http://ex/c>"),
	})
	require.NoError(t, err)
	assert.InDelta(t, 6.0/8*4.0/8*0.5, pair, 1e-9)
}

func TestVariableCountingFallsBack(t *testing.T) {
	calls := 0
	est := VariableCountingEstimator{Fallback: EstimatorFunc(func(context.Context, []EntryWithMetadata) (float64, error) {
		calls++
		return 0.25, nil
	})}
	got, err := est.Estimate(context.Background(), []EntryWithMetadata{
		patternEntry("a", "?s", "<http://ex/p>", "?o"),
		withMetadata("opaque", metadata.ExactCardinality(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.25, got)
	assert.Equal(t, 1, calls)
}

func TestCardinalitySorter(t *testing.T) {
	a, _ := testutil.Entry(testutil.EntrySpec{Name: "A", Cardinality: metadata.EstimateCardinality(5)})
	b, _ := testutil.Entry(testutil.EntrySpec{Name: "B", Cardinality: metadata.ExactCardinality(9)})
	c, _ := testutil.Entry(testutil.EntrySpec{Name: "C", Cardinality: metadata.ExactCardinality(5)})
	d, _ := testutil.Entry(testutil.EntrySpec{Name: "D", Cardinality: metadata.EstimateCardinality(5)})

	out, err := NewCardinality().Sort(context.Background(), []join.Entry{a, b, c, d})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "D", "B"}, entryNames(out))
}
