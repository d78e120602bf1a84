// Package entrysort reorders inner join entries so the most restrictive
// ones are joined first.
package entrysort

import (
	"context"
	"math"

	"github.com/comunica/comunica-sub013/internal/algebra"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/rdf"
)

// EntryWithMetadata is a join entry whose metadata has been resolved.
type EntryWithMetadata struct {
	Entry    join.Entry
	Metadata *metadata.Metadata
}

// Estimator scores how restrictive joining a set of entries is. Scores lie
// in (0, 1]; lower means fewer expected result rows. Estimate must be a pure
// function of the entries' operations and metadata.
type Estimator interface {
	Estimate(ctx context.Context, entries []EntryWithMetadata) (float64, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context, entries []EntryWithMetadata) (float64, error)

func (f EstimatorFunc) Estimate(ctx context.Context, entries []EntryWithMetadata) (float64, error) {
	return f(ctx, entries)
}

const (
	// minCardinality keeps empty entries from zeroing out a product, so
	// subsets containing them still order among themselves.
	minCardinality = 1e-6

	// sharedVariableDamping scales the estimate once for every variable two
	// entries of the subset have in common.
	sharedVariableDamping = 0.1

	// minSelectivity is the floor of every estimate.
	minSelectivity = 1e-12
)

// CardinalityEstimator derives selectivity from metadata alone: the product
// of cardinalities, damped per shared variable, squashed into (0, 1].
//
// Thread-safety: stateless.
type CardinalityEstimator struct{}

func (CardinalityEstimator) Estimate(_ context.Context, entries []EntryWithMetadata) (float64, error) {
	raw := 1.0
	for _, e := range entries {
		raw *= math.Max(e.Metadata.Cardinality.Value, minCardinality)
	}
	raw *= math.Pow(sharedVariableDamping, float64(sharedPairs(entries)))
	return squash(raw), nil
}

// squash maps [0, +Inf) monotonically onto [minSelectivity, 1).
func squash(raw float64) float64 {
	l := math.Log1p(raw)
	return math.Max(l/(1+l), minSelectivity)
}

// sharedPairs counts, over every pair of entries, the variables both declare.
func sharedPairs(entries []EntryWithMetadata) int {
	n := 0
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			n += len(metadata.SharedVariables(entries[i].Metadata, entries[j].Metadata))
		}
	}
	return n
}

// Pattern position weights of the variable-counting heuristic: a variable
// subject is the least selective position, then the object, then the
// predicate and graph.
const (
	subjectWeight   = 4
	predicateWeight = 1
	objectWeight    = 2
	graphWeight     = 1
	patternWeights  = subjectWeight + predicateWeight + objectWeight + graphWeight

	minPatternCost = 1.0 / 16

	// connectedDamping applies to every pair of patterns sharing a variable.
	connectedDamping = 0.5
)

// VariableCountingEstimator scores quad patterns by which positions hold
// variables, without looking at data. Subsets holding any entry that is not
// an *algebra.Pattern are scored by Fallback.
//
// Thread-safety: stateless.
type VariableCountingEstimator struct {
	// Fallback scores subsets with opaque operations.
	// A nil Fallback means CardinalityEstimator.
	Fallback Estimator
}

func (v VariableCountingEstimator) Estimate(ctx context.Context, entries []EntryWithMetadata) (float64, error) {
	patterns := make([]*algebra.Pattern, 0, len(entries))
	for _, e := range entries {
		p, ok := e.Entry.Operation.(*algebra.Pattern)
		if !ok {
			fallback := v.Fallback
			if fallback == nil {
				fallback = CardinalityEstimator{}
			}
			return fallback.Estimate(ctx, entries)
		}
		patterns = append(patterns, p)
	}

	sel := 1.0
	for _, p := range patterns {
		sel *= patternCost(p)
	}
	for i := range patterns {
		for j := i + 1; j < len(patterns); j++ {
			if connected(patterns[i], patterns[j]) {
				sel *= connectedDamping
			}
		}
	}
	return math.Max(sel, minSelectivity), nil
}

func patternCost(p *algebra.Pattern) float64 {
	weights := [4]int{subjectWeight, predicateWeight, objectWeight, graphWeight}
	cost := 0
	for i, t := range p.Terms() {
		if rdf.IsVariable(t) {
			cost += weights[i]
		}
	}
	return math.Max(float64(cost)/patternWeights, minPatternCost)
}

func connected(a, b *algebra.Pattern) bool {
	vars := make(map[string]bool)
	for _, name := range algebra.Variables(a) {
		vars[name] = true
	}
	for _, name := range algebra.Variables(b) {
		if vars[name] {
			return true
		}
	}
	return false
}
