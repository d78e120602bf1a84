package entrysort

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/algebra"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
)

// Option configures a sorter.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger sorters report their decisions to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Selectivity orders entries greedily: each step appends the remaining
// entry whose estimate, taken over the already placed prefix plus that
// entry, is smallest.
//
// Ties go to the remaining entry that came first in the input. Sorting a
// list that is already in greedy order leaves it unchanged.
type Selectivity struct {
	estimator Estimator
	logger    *slog.Logger
}

// NewSelectivity creates a sorter scoring subsets with est.
// A nil est means CardinalityEstimator.
func NewSelectivity(est Estimator, opts ...Option) *Selectivity {
	if est == nil {
		est = CardinalityEstimator{}
	}
	o := buildOptions(opts)
	return &Selectivity{estimator: est, logger: o.logger}
}

// Sort implements join.Sorter.
func (s *Selectivity) Sort(ctx context.Context, entries []join.Entry) ([]join.Entry, error) {
	if len(entries) < 2 {
		return append([]join.Entry(nil), entries...), nil
	}
	resolved, err := resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	sorted, err := s.SortWithMetadata(ctx, resolved)
	if err != nil {
		return nil, err
	}
	out := make([]join.Entry, len(sorted))
	for i, e := range sorted {
		out[i] = e.Entry
	}
	s.logger.Debug("join entries sorted", "sorter", "selectivity", "order", describe(out))
	return out, nil
}

// SortWithMetadata is Sort over entries whose metadata is already resolved.
// The input slice is not modified.
func (s *Selectivity) SortWithMetadata(ctx context.Context, entries []EntryWithMetadata) ([]EntryWithMetadata, error) {
	sorted := make([]EntryWithMetadata, 0, len(entries))
	remaining := append([]EntryWithMetadata(nil), entries...)
	if len(remaining) == 1 {
		return remaining, nil
	}

	for len(remaining) > 0 {
		best := -1
		bestScore := math.Inf(1)
		for i, candidate := range remaining {
			// Full slice expression so append never writes into sorted.
			subset := append(sorted[:len(sorted):len(sorted)], candidate)
			score, err := s.estimator.Estimate(ctx, subset)
			if err != nil {
				return nil, errors.Wrap(err, "estimate selectivity")
			}
			if math.IsNaN(score) || score < 0 {
				return nil, errors.Newf("estimator returned invalid selectivity %v", score)
			}
			if best < 0 || score < bestScore {
				best, bestScore = i, score
			}
		}
		sorted = append(sorted, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return sorted, nil
}

// Cardinality orders entries by ascending cardinality. On equal values
// exact cardinalities come before estimates; otherwise input order is kept.
type Cardinality struct {
	logger *slog.Logger
}

// NewCardinality creates a cardinality sorter.
func NewCardinality(opts ...Option) *Cardinality {
	o := buildOptions(opts)
	return &Cardinality{logger: o.logger}
}

// Sort implements join.Sorter.
func (c *Cardinality) Sort(ctx context.Context, entries []join.Entry) ([]join.Entry, error) {
	if len(entries) < 2 {
		return append([]join.Entry(nil), entries...), nil
	}
	resolved, err := resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		a, b := resolved[i].Metadata.Cardinality, resolved[j].Metadata.Cardinality
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Type == metadata.Exact && b.Type != metadata.Exact
	})
	out := make([]join.Entry, len(resolved))
	for i, e := range resolved {
		out[i] = e.Entry
	}
	c.logger.Debug("join entries sorted", "sorter", "cardinality", "order", describe(out))
	return out, nil
}

func resolve(ctx context.Context, entries []join.Entry) ([]EntryWithMetadata, error) {
	mds, err := join.Metadatas(ctx, entries)
	if err != nil {
		return nil, err
	}
	out := make([]EntryWithMetadata, len(entries))
	for i, e := range entries {
		out[i] = EntryWithMetadata{Entry: e, Metadata: mds[i]}
	}
	return out, nil
}

func describe(entries []join.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = algebra.Describe(e.Operation)
	}
	return out
}
