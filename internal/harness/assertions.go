package harness

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
	"github.com/comunica/comunica-sub013/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
//
// A join failure with no error assertion is itself reported as a failure,
// and assertions about rows or metadata are skipped for failed joins.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var msgs []string
	expectsError := false
	for _, a := range assertions {
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if result.Err != nil && !expectsError {
		msgs = append(msgs, (&AssertionError{
			Type:     "join",
			Expected: "join to succeed",
			Actual:   result.Err.Error(),
		}).Error())
	}

	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func evaluate(result *Result, a Assertion) error {
	failed := result.Err != nil
	switch a.Type {
	case AssertRows:
		if failed {
			return nil
		}
		return assertRows(result, a)
	case AssertRowCount:
		if failed {
			return nil
		}
		if len(result.Rows) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d rows", a.Count),
				Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
			}
		}
	case AssertStrategy:
		if result.Strategy != a.Strategy {
			return &AssertionError{
				Type:     a.Type,
				Expected: a.Strategy,
				Actual:   defaultString(result.Strategy, "<none>"),
			}
		}
	case AssertPlan:
		got := result.PlanStrategies()
		if strings.Join(got, ",") != strings.Join(a.Plan, ",") {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%v", a.Plan),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
	case AssertCardinality:
		if failed {
			return nil
		}
		typ, _ := metadata.ParseCardinalityType(defaultString(a.CardinalityType, "exact"))
		want := metadata.Cardinality{Type: typ, Value: a.Cardinality}
		if result.Metadata.Cardinality != want {
			return &AssertionError{
				Type:     a.Type,
				Expected: want.String(),
				Actual:   result.Metadata.Cardinality.String(),
			}
		}
	case AssertVariables:
		if failed {
			return nil
		}
		got := variableStrings(result.Metadata.Variables)
		if strings.Join(got, ",") != strings.Join(a.Variables, ",") {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%v", a.Variables),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
	case AssertError:
		code, ok := join.CodeOf(result.Err)
		if !ok || string(code) != a.Code {
			actual := "no error"
			if result.Err != nil {
				actual = fmt.Sprintf("%s (%v)", defaultString(string(code), "uncoded"), result.Err)
			}
			return &AssertionError{Type: a.Type, Expected: a.Code, Actual: actual}
		}
	case AssertEntriesClosed:
		for i, tr := range result.Tracked {
			if tr.Closes() != 1 {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("entry %d closed once", i),
					Actual:   fmt.Sprintf("closed %d times", tr.Closes()),
				}
			}
		}
	default:
		return errors.Newf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertRows(result *Result, a Assertion) error {
	want, err := ParseRows(a.Rows)
	if err != nil {
		return err
	}
	wantRows := testutil.Canonical(want)
	gotRows := testutil.Canonical(result.Rows)
	if strings.Join(wantRows, "\n") != strings.Join(gotRows, "\n") {
		return &AssertionError{
			Type:     a.Type,
			Expected: formatRows(wantRows),
			Actual:   formatRows(gotRows),
		}
	}
	return nil
}

func formatRows(rows []string) string {
	if len(rows) == 0 {
		return "no rows"
	}
	return fmt.Sprintf("%d rows:\n    %s", len(rows), strings.Join(rows, "\n    "))
}

func variableStrings(vars []metadata.Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.String()
	}
	return out
}
