package harness

import (
	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool

	// Strategy is the strategy chosen for the top-level join.
	Strategy string

	// Plan records every selection, nested joins included.
	Plan []join.PlanNode

	// Rows is the join output in emission order.
	Rows []bindings.Bindings

	// Metadata is the join result's metadata.
	Metadata *metadata.Metadata

	// Err is the join failure, if any.
	Err error

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string

	// Tracked observes the inline entry streams.
	Tracked []*testutil.TrackedStream
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// PlanStrategies returns the chosen strategy of every plan node in order.
func (r *Result) PlanStrategies() []string {
	names := make([]string, len(r.Plan))
	for i, n := range r.Plan {
		names[i] = n.Strategy
	}
	return names
}
