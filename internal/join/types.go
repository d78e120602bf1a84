package join

import (
	"context"

	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/stream"
)

// LogicalType is the kind of join requested.
type LogicalType int

const (
	Inner LogicalType = iota
	Optional
	Minus
)

func (t LogicalType) String() string {
	switch t {
	case Inner:
		return "inner"
	case Optional:
		return "optional"
	case Minus:
		return "minus"
	default:
		return "unknown"
	}
}

// ParseLogicalType parses "inner", "optional" or "minus".
func ParseLogicalType(s string) (LogicalType, error) {
	switch s {
	case "inner", "":
		return Inner, nil
	case "optional", "left":
		return Optional, nil
	case "minus":
		return Minus, nil
	default:
		return Inner, NewInvalidInputError("unknown join type %q", s)
	}
}

// Output is a join input or result: a stream plus its metadata accessor.
type Output struct {
	Stream   stream.Stream
	Metadata metadata.Accessor
}

// Entry is one input of a join. Operation identifies the sub-query that
// produced Output; it is opaque to strategies and only read by estimators
// and plan explanations.
type Entry struct {
	Operation any
	Output    Output
}

// Action is a single join request.
//
// For Optional and Minus joins the entry order is significant: Entries[0]
// is the left side. Inner joins are order-insensitive.
type Action struct {
	ID      string
	Type    LogicalType
	Entries []Entry
}

// Coefficients describe the estimated resource use of running a strategy.
// All values are non-negative.
type Coefficients struct {
	Iterations     float64 `json:"iterations"`
	PersistedItems float64 `json:"persisted_items"`
	BlockingItems  float64 `json:"blocking_items"`
	RequestTime    float64 `json:"request_time"`
}

// Strategy is one physical join algorithm.
//
// Test reports whether the strategy can handle the action and at what cost.
// It must not consume any entry stream. An infeasible action is reported
// through TestResult, not through the error; the error is reserved for
// failures such as unresolvable metadata.
//
// Run executes the join. Once Run is called the strategy owns every entry
// stream and must close each exactly once, including on early exit.
type Strategy interface {
	Name() string
	Test(ctx context.Context, a *Action) (TestResult, error)
	Run(ctx context.Context, a *Action) (*Output, error)
}

// Sorter reorders the entries of an inner join before strategy selection.
type Sorter interface {
	Sort(ctx context.Context, entries []Entry) ([]Entry, error)
}

// Closers returns every entry stream.
func Closers(entries []Entry) []stream.Stream {
	streams := make([]stream.Stream, len(entries))
	for i, e := range entries {
		streams[i] = e.Output.Stream
	}
	return streams
}

// CloseEntries closes every entry stream.
func CloseEntries(entries []Entry) error {
	return stream.CloseAll(Closers(entries)...)
}
