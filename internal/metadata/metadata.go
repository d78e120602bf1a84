// Package metadata describes the statistics every join input advertises:
// cardinality, variables, request cost and a validation state.
package metadata

import (
	"context"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// CardinalityType distinguishes exact counts from estimates.
type CardinalityType int

const (
	Estimate CardinalityType = iota
	Exact
)

func (t CardinalityType) String() string {
	if t == Exact {
		return "exact"
	}
	return "estimate"
}

// ParseCardinalityType parses "exact" or "estimate".
func ParseCardinalityType(s string) (CardinalityType, error) {
	switch s {
	case "exact":
		return Exact, nil
	case "estimate", "":
		return Estimate, nil
	default:
		return Estimate, errors.Newf("unknown cardinality type %q", s)
	}
}

// Cardinality is a row count. Value is a float so estimates may be fractional
// and unbounded inputs may report +Inf.
type Cardinality struct {
	Type  CardinalityType
	Value float64
}

// ExactCardinality returns an exact count.
func ExactCardinality(v float64) Cardinality {
	return Cardinality{Type: Exact, Value: v}
}

// EstimateCardinality returns an estimated count.
func EstimateCardinality(v float64) Cardinality {
	return Cardinality{Type: Estimate, Value: v}
}

// IsExactZero reports whether the input is known to produce no rows.
func (c Cardinality) IsExactZero() bool {
	return c.Type == Exact && c.Value == 0
}

func (c Cardinality) String() string {
	return fmt.Sprintf("%s %g", c.Type, c.Value)
}

// Variable is a variable an input may bind.
type Variable struct {
	Name string
	// CanBeUndef is true when some rows may leave the variable unbound.
	CanBeUndef bool
}

// String returns the name, with a "?" suffix when the variable can be
// unbound.
func (v Variable) String() string {
	if v.CanBeUndef {
		return v.Name + "?"
	}
	return v.Name
}

// Metadata is what a join input advertises about itself.
type Metadata struct {
	State       *ValidationState
	Cardinality Cardinality
	Variables   []Variable
	// RequestTime is the estimated cost of fetching the first row.
	RequestTime float64
	// PageSize is the number of rows delivered per request; 0 when unknown.
	PageSize int
}

// Validate checks the structural invariants of m.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.New("metadata is nil")
	}
	if m.State == nil {
		return errors.New("metadata has no validation state")
	}
	if math.IsNaN(m.Cardinality.Value) || m.Cardinality.Value < 0 {
		return errors.Newf("invalid cardinality %v", m.Cardinality.Value)
	}
	if math.IsNaN(m.RequestTime) || m.RequestTime < 0 {
		return errors.Newf("invalid request time %v", m.RequestTime)
	}
	seen := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		if v.Name == "" {
			return errors.New("variable with empty name")
		}
		if seen[v.Name] {
			return errors.Newf("duplicate variable %q", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

// VariableNames returns the names of m's variables in declaration order.
func (m *Metadata) VariableNames() []string {
	names := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		names[i] = v.Name
	}
	return names
}

// Variable looks up a variable by name.
func (m *Metadata) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Accessor resolves metadata on demand. Implementations must be safe to call
// concurrently, since strategies are tested in parallel.
type Accessor func(ctx context.Context) (*Metadata, error)

// Static returns an accessor that always yields md.
func Static(md *Metadata) Accessor {
	return func(context.Context) (*Metadata, error) {
		return md, nil
	}
}

// Variables builds definite variables from names.
func Variables(names ...string) []Variable {
	vars := make([]Variable, len(names))
	for i, n := range names {
		vars[i] = Variable{Name: n}
	}
	return vars
}
