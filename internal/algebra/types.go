package algebra

import (
	"fmt"
	"strings"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/rdf"
)

// Operation is a sub-query producing bindings.
//
// This is a sealed interface - only types in this package implement it.
type Operation interface {
	operationNode()
	String() string
}

// Pattern matches quads. Each position is a concrete term or a variable.
// A nil Graph matches the default graph only.
//
// Example:
//
//	Pattern{
//	  Subject:   rdf.Variable("s"),
//	  Predicate: rdf.NamedNode("http://xmlns.com/foaf/0.1/name"),
//	  Object:    rdf.Variable("name"),
//	}
//
// Produces bindings {?s, ?name} for every matching quad.
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
	Graph     rdf.Term
}

func (*Pattern) operationNode() {}

// Terms returns the pattern positions in subject, predicate, object, graph
// order. A nil graph is returned as rdf.DefaultGraph.
func (p *Pattern) Terms() [4]rdf.Term {
	g := p.Graph
	if g == nil {
		g = rdf.DefaultGraph{}
	}
	return [4]rdf.Term{p.Subject, p.Predicate, p.Object, g}
}

func (p *Pattern) String() string {
	parts := []string{termString(p.Subject), termString(p.Predicate), termString(p.Object)}
	if p.Graph != nil {
		if _, ok := p.Graph.(rdf.DefaultGraph); !ok {
			parts = append(parts, termString(p.Graph))
		}
	}
	return strings.Join(parts, " ")
}

// Values is a fixed table of rows, each binding a subset of Variables.
type Values struct {
	Variables []string
	Rows      []bindings.Bindings
}

func (*Values) operationNode() {}

func (v *Values) String() string {
	vars := make([]string, len(v.Variables))
	for i, name := range v.Variables {
		vars[i] = "?" + name
	}
	return fmt.Sprintf("VALUES (%s) [%d rows]", strings.Join(vars, " "), len(v.Rows))
}

// Join combines its inputs. For Optional and Minus the first input is the
// left side.
type Join struct {
	Type   join.LogicalType
	Inputs []Operation
}

func (*Join) operationNode() {}

func (j *Join) String() string {
	parts := make([]string, len(j.Inputs))
	for i, in := range j.Inputs {
		parts[i] = in.String()
	}
	return fmt.Sprintf("%s(%s)", j.Type, strings.Join(parts, ", "))
}

func termString(t rdf.Term) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Variables returns the variable names op can bind, in order of first
// appearance.
func Variables(op Operation) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var walk func(Operation)
	walk = func(op Operation) {
		switch op := op.(type) {
		case *Pattern:
			for _, t := range op.Terms() {
				if v, ok := t.(rdf.Variable); ok {
					add(string(v))
				}
			}
		case *Values:
			for _, name := range op.Variables {
				add(name)
			}
		case *Join:
			for _, in := range op.Inputs {
				walk(in)
			}
		}
	}
	walk(op)
	return out
}

// Describe renders an entry operation for plans and logs. Operations that
// are not algebra nodes are formatted with %v.
func Describe(op any) string {
	switch op := op.(type) {
	case nil:
		return "<anonymous>"
	case Operation:
		return op.String()
	case fmt.Stringer:
		return op.String()
	default:
		return fmt.Sprintf("%v", op)
	}
}
