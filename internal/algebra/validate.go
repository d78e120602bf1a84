package algebra

import (
	"fmt"

	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/rdf"
)

// ValidationResult lists the problems found in an operation tree.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each malformed node.
	Problems []string
}

// Validate checks an operation tree for malformed nodes: missing pattern
// positions, literals or blank nodes in positions that cannot hold them,
// rows binding undeclared variables, and joins with too few inputs.
//
// Validate is a pure function with no side effects.
func Validate(op Operation) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateOperation(op)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateOperation(op Operation) {
	switch op := op.(type) {
	case nil:
		v.addProblem("nil operation")
	case *Pattern:
		v.validatePattern(op)
	case *Values:
		v.validateValues(op)
	case *Join:
		v.validateJoin(op)
	default:
		v.addProblem("unknown operation type: %T", op)
	}
}

func (v *validator) validatePattern(p *Pattern) {
	for i, t := range p.Terms() {
		pos := [...]string{"subject", "predicate", "object", "graph"}[i]
		switch t.(type) {
		case nil:
			v.addProblem("pattern %s is missing", pos)
		case rdf.Literal:
			if pos != "object" {
				v.addProblem("pattern %s cannot be a literal: %s", pos, t)
			}
		case rdf.BlankNode:
			if pos == "predicate" || pos == "graph" {
				v.addProblem("pattern %s cannot be a blank node: %s", pos, t)
			}
		case rdf.DefaultGraph:
			if pos != "graph" {
				v.addProblem("pattern %s cannot be the default graph", pos)
			}
		}
	}
}

func (v *validator) validateValues(vals *Values) {
	declared := make(map[string]bool, len(vals.Variables))
	for _, name := range vals.Variables {
		if declared[name] {
			v.addProblem("VALUES declares ?%s twice", name)
		}
		declared[name] = true
	}
	for i, row := range vals.Rows {
		for _, name := range row.Variables() {
			if !declared[name] {
				v.addProblem("VALUES row %d binds undeclared ?%s", i, name)
			}
		}
	}
}

func (v *validator) validateJoin(j *Join) {
	if j.Type != join.Inner && len(j.Inputs) != 2 {
		v.addProblem("%s join needs exactly 2 inputs, got %d", j.Type, len(j.Inputs))
	}
	for _, in := range j.Inputs {
		v.validateOperation(in)
	}
}
