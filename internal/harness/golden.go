package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/testutil"
)

// Snapshot is the deterministic, comparable part of a scenario result.
type Snapshot struct {
	Scenario    string   `json:"scenario"`
	Strategy    string   `json:"strategy,omitempty"`
	Plan        []string `json:"plan"`
	Cardinality string   `json:"cardinality,omitempty"`
	Variables   []string `json:"variables,omitempty"`
	Rows        []string `json:"rows"`
	Error       string   `json:"error,omitempty"`
}

// NewSnapshot captures result. Rows are sorted so emission order does not
// matter.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		Scenario: name,
		Strategy: result.Strategy,
		Plan:     result.PlanStrategies(),
		Rows:     testutil.Canonical(result.Rows),
	}
	if result.Metadata != nil {
		s.Cardinality = result.Metadata.Cardinality.String()
		s.Variables = variableStrings(result.Metadata.Variables)
	}
	if code, ok := join.CodeOf(result.Err); ok {
		s.Error = string(code)
	} else if result.Err != nil {
		s.Error = "uncoded"
	}
	return s
}

// Marshal encodes the snapshot as indented JSON. HTML escaping is disabled
// so IRIs stay readable.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot be set up. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
