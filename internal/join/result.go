package join

import (
	"context"
	"math"

	"github.com/comunica/comunica-sub013/internal/metadata"
)

// MetadataFunc derives a join result's cardinality and variables from the
// metadata of its inputs.
type MetadataFunc func(mds []*metadata.Metadata) (metadata.Cardinality, []metadata.Variable)

// ResultMetadata builds the metadata accessor of a join result.
//
// The result is recomputed lazily from the inputs' accessors and cached.
// Its validation state is invalidated as soon as any input's state is, after
// which the next call recomputes from fresh input metadata. Only the input
// accessors are retained, never the input streams.
func ResultMetadata(entries []Entry, derive MetadataFunc) metadata.Accessor {
	inputs := make([]Entry, len(entries))
	for i, e := range entries {
		inputs[i] = Entry{Output: Output{Metadata: e.Output.Metadata}}
	}
	cache := metadata.NewCache(func(ctx context.Context) (*metadata.Metadata, error) {
		mds, err := Metadatas(ctx, inputs)
		if err != nil {
			return nil, err
		}
		card, vars := derive(mds)
		return &metadata.Metadata{
			State:       metadata.Chain(metadata.States(mds...)...),
			Cardinality: card,
			Variables:   vars,
			RequestTime: metadata.SumRequestTime(mds...),
		}, nil
	})
	return cache.Get
}

// InnerMetadata is the MetadataFunc of inner joins. A variable can be
// unbound in the result only if every input declaring it can leave it
// unbound.
func InnerMetadata(mds []*metadata.Metadata) (metadata.Cardinality, []metadata.Variable) {
	vars := metadata.UnionVariables(mds...)
	for i := range vars {
		for _, md := range mds {
			if v, ok := md.Variable(vars[i].Name); ok && !v.CanBeUndef {
				vars[i].CanBeUndef = false
				break
			}
		}
	}
	return metadata.ProductCardinality(mds...), vars
}

// OptionalMetadata is the MetadataFunc of left-outer joins. Every left row
// survives, so the result has at least as many rows as the left input.
// Variables only the right side binds can be unbound.
func OptionalMetadata(mds []*metadata.Metadata) (metadata.Cardinality, []metadata.Variable) {
	left, right := mds[0], mds[1:]
	var card metadata.Cardinality
	switch {
	case left.Cardinality.IsExactZero():
		card = metadata.ExactCardinality(0)
	default:
		product := left.Cardinality.Value
		for _, md := range right {
			product *= math.Max(md.Cardinality.Value, 1)
		}
		card = metadata.EstimateCardinality(product)
	}

	vars := append([]metadata.Variable{}, left.Variables...)
	for _, v := range metadata.UnionVariables(right...) {
		if _, ok := left.Variable(v.Name); ok {
			continue
		}
		vars = append(vars, metadata.Variable{Name: v.Name, CanBeUndef: true})
	}
	return card, vars
}

// MinusMetadata is the MetadataFunc of MINUS. The result is a subset of the
// left input; with no shared variables it is the left input unchanged.
func MinusMetadata(mds []*metadata.Metadata) (metadata.Cardinality, []metadata.Variable) {
	left := mds[0]
	vars := append([]metadata.Variable{}, left.Variables...)
	card := left.Cardinality
	if len(metadata.SharedVariables(mds...)) > 0 && !card.IsExactZero() {
		card = metadata.EstimateCardinality(card.Value)
	}
	return card, vars
}
