// Package joinstrategy implements the physical join algorithms the mediator
// chooses between.
package joinstrategy

import (
	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/join"
)

// DefaultNames lists the built-in strategies in registration order. Earlier
// strategies win score ties.
var DefaultNames = []string{
	"none",
	"single",
	"multi-empty",
	"hash",
	"nested-loop",
	"optional-hash",
	"optional-nested-loop",
	"minus-hash",
	"minus-nested-loop",
	"multi-smallest",
}

// ByName builds the named strategies in the given order. The multi-way
// strategy issues its nested joins through m and orders entries with sorter.
func ByName(names []string, sorter join.Sorter, m Mediator) ([]join.Strategy, error) {
	out := make([]join.Strategy, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, errors.Newf("strategy %q listed twice", name)
		}
		seen[name] = true

		var s join.Strategy
		switch name {
		case "none":
			s = NewNone()
		case "single":
			s = NewSingle()
		case "multi-empty":
			s = NewMultiEmpty()
		case "hash":
			s = NewHash(join.Inner)
		case "nested-loop":
			s = NewNestedLoop(join.Inner)
		case "optional-hash":
			s = NewHash(join.Optional)
		case "optional-nested-loop":
			s = NewNestedLoop(join.Optional)
		case "minus-hash":
			s = NewHash(join.Minus)
		case "minus-nested-loop":
			s = NewNestedLoop(join.Minus)
		case "multi-smallest":
			s = NewMultiSmallest(sorter, m)
		default:
			return nil, errors.WithHintf(errors.Newf("unknown strategy %q", name),
				"known strategies: %v", DefaultNames)
		}
		out = append(out, s)
	}
	return out, nil
}

// NewMediator returns a mediator with every built-in strategy registered.
func NewMediator(sorter join.Sorter, opts ...join.MediatorOption) *join.Mediator {
	m := join.NewMediator(opts...)
	strategies, err := ByName(DefaultNames, sorter, m)
	if err != nil {
		panic(err) // DefaultNames only holds known names
	}
	m.Register(strategies...)
	return m
}
