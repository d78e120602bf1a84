package join

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code categorizes join failures and infeasibility reasons.
type Code string

const (
	// CodeInvalidEntryCount indicates the strategy does not accept this many entries.
	CodeInvalidEntryCount Code = "INVALID_ENTRY_COUNT"

	// CodeWrongJoinType indicates the strategy handles a different logical type.
	CodeWrongJoinType Code = "WRONG_JOIN_TYPE"

	// CodeNoEmptyEntry indicates no entry is known to be empty.
	CodeNoEmptyEntry Code = "NO_EMPTY_ENTRY"

	// CodeNoSharedVariables indicates the entries have no variable in common.
	CodeNoSharedVariables Code = "NO_SHARED_VARIABLES"

	// CodeUndefNotSupported indicates a key variable may be unbound and the
	// strategy cannot model that.
	CodeUndefNotSupported Code = "UNDEF_NOT_SUPPORTED"

	// CodeNoFeasibleStrategy indicates every registered strategy rejected the action.
	CodeNoFeasibleStrategy Code = "NO_FEASIBLE_STRATEGY"

	// CodeUpstreamStream indicates an input stream failed during execution.
	CodeUpstreamStream Code = "UPSTREAM_STREAM"

	// CodeInvalidInput indicates malformed entries or metadata.
	CodeInvalidInput Code = "INVALID_INPUT"
)

// Sentinels for errors.Is. Errors built by this package are marked with them.
var (
	ErrNoFeasibleStrategy = errors.New("no feasible join strategy")
	ErrUpstream           = errors.New("join input failed")
	ErrInvalidInput       = errors.New("invalid join input")
)

// Infeasible is the reason a strategy rejected an action.
type Infeasible struct {
	Code    Code
	Message string
}

func (r *Infeasible) String() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// TestResult is either a feasible cost estimate or an infeasibility reason.
type TestResult struct {
	Coefficients Coefficients
	Failure      *Infeasible
}

// Passed reports whether the strategy accepted the action.
func (r TestResult) Passed() bool {
	return r.Failure == nil
}

// Pass builds a feasible result.
func Pass(c Coefficients) TestResult {
	return TestResult{Coefficients: c}
}

// Fail builds an infeasible result.
func Fail(code Code, format string, args ...any) TestResult {
	return TestResult{Failure: &Infeasible{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// Error is a structured join failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// ActionID identifies the failing join request.
	ActionID string

	// Reasons maps strategy name to why it rejected the action.
	Reasons map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.ActionID != "" {
		fmt.Fprintf(&b, " (join=%s)", e.ActionID)
	}
	if len(e.Reasons) > 0 {
		names := make([]string, 0, len(e.Reasons))
		for name := range e.Reasons {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "\n  %s: %s", name, e.Reasons[name])
		}
	}
	return b.String()
}

// NewNoFeasibleStrategyError reports that every strategy rejected a.
func NewNoFeasibleStrategyError(a *Action, candidates []Candidate) error {
	reasons := make(map[string]string, len(candidates))
	for _, c := range candidates {
		if c.Result.Failure != nil {
			reasons[c.Strategy] = c.Result.Failure.String()
		}
	}
	err := &Error{
		Code:     CodeNoFeasibleStrategy,
		Message:  fmt.Sprintf("no strategy can run a %s join over %d entries", a.Type, len(a.Entries)),
		ActionID: a.ID,
		Reasons:  reasons,
	}
	return errors.WithHint(errors.Mark(err, ErrNoFeasibleStrategy),
		"register a strategy for this join type or reorder the entries")
}

// NewInvalidInputError reports malformed join input.
func NewInvalidInputError(format string, args ...any) error {
	err := &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
	return errors.Mark(err, ErrInvalidInput)
}

// WrapUpstream marks err as an input stream failure raised while running
// the named strategy. Errors already marked are returned unchanged.
func WrapUpstream(err error, strategy string) error {
	if err == nil || errors.Is(err, ErrUpstream) {
		return err
	}
	return errors.Mark(errors.Wrapf(err, "%s join input", strategy), ErrUpstream)
}

// IsNoFeasibleStrategy reports whether err is a no-feasible-strategy error.
func IsNoFeasibleStrategy(err error) bool {
	return errors.Is(err, ErrNoFeasibleStrategy)
}

// IsUpstream reports whether err came from a join input stream.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// CodeOf extracts the join error code, if any.
func CodeOf(err error) (Code, bool) {
	var je *Error
	if errors.As(err, &je) {
		return je.Code, true
	}
	if IsUpstream(err) {
		return CodeUpstreamStream, true
	}
	return "", false
}
