package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunica/comunica-sub013/internal/config"
	"github.com/comunica/comunica-sub013/internal/join"
)

// TestScenarios runs every fixture scenario against its golden snapshot.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -run TestScenarios -update
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func mustParse(t *testing.T, yaml string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	return s
}

const crossProduct = `
name: cross
description: entries without shared variables
entries:
  - name: X
    variables: [x]
    rows: [{x: "<http://ex/a>"}]
  - name: Y
    variables: [y]
    rows: [{y: "<http://ex/b>"}, {y: "<http://ex/c>"}]
assertions:
  - type: row_count
    count: 2
`

func TestRun_DefaultConfig(t *testing.T) {
	result, err := Run(context.Background(), mustParse(t, crossProduct))
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "nested-loop", result.Strategy)
	require.Len(t, result.Plan, 1)
	assert.Equal(t, "join-1", result.Plan[0].ActionID)
	assert.Equal(t, 2, result.Plan[0].Entries)
	assert.Len(t, result.Plan[0].Candidates, len(config.Default().Strategies))
}

func TestRun_ConfigOptionOverridesScenario(t *testing.T) {
	scenario := mustParse(t, crossProduct)
	scenario.Config = `strategies: ["hash"]`

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	code, ok := join.CodeOf(result.Err)
	require.True(t, ok)
	assert.Equal(t, join.CodeNoFeasibleStrategy, code)
	assert.False(t, result.Pass)

	result, err = Run(context.Background(), scenario, WithConfig(config.Default()))
	require.NoError(t, err)
	assert.NoError(t, result.Err)
	assert.Equal(t, "nested-loop", result.Strategy)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_UnexpectedJoinErrorFails(t *testing.T) {
	scenario := mustParse(t, `
name: broken
description: upstream error without an error assertion
entries:
  - name: A
    variables: [x]
    cardinality: 1
    fail_after: boom
  - name: B
    variables: [x]
    rows: [{x: "<http://ex/a>"}]
assertions:
  - type: row_count
    count: 0
`)
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1, "row_count is skipped for a failed join")
	assert.Contains(t, result.Errors[0], "join to succeed")
	assert.Contains(t, result.Errors[0], "boom")
}

func TestRun_AssertionFailuresAreCollected(t *testing.T) {
	scenario := mustParse(t, `
name: wrong
description: every assertion is wrong
entries:
  - name: A
    variables: [x]
    rows: [{x: "<http://ex/a>"}]
  - name: B
    variables: [x]
    rows: [{x: "<http://ex/a>"}]
assertions:
  - type: strategy
    strategy: hash
  - type: rows
    rows: [{x: "<http://ex/b>"}]
  - type: cardinality
    cardinality: 7
  - type: variables
    variables: [y]
  - type: error
    code: NO_FEASIBLE_STRATEGY
`)
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Assertion failed: strategy")
	assert.Contains(t, result.Errors[0], "Actual: nested-loop")
	assert.Contains(t, result.Errors[1], "Assertion failed: rows")
	assert.Contains(t, result.Errors[2], "Expected: exact 7")
	assert.Contains(t, result.Errors[3], "Expected: [y]")
	assert.Contains(t, result.Errors[4], "Actual: no error")
}

func TestRun_SetupErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario *Scenario
		wantErr  string
	}{
		{
			name:     "invalid config",
			scenario: &Scenario{Name: "s", Config: `sort: "random"`},
			wantErr:  "scenario config",
		},
		{
			name: "pattern without data",
			scenario: &Scenario{Name: "s", Entries: []EntrySpec{
				{Pattern: "?s ?p ?o"},
			}},
			wantErr: "entries[0]: pattern entries need scenario data",
		},
		{
			name: "invalid pattern",
			scenario: &Scenario{
				Name:    "s",
				Data:    "<http://ex/s> <http://ex/p> <http://ex/o>",
				Entries: []EntrySpec{{Pattern: "?s ?p"}},
			},
			wantErr: "entries[0]",
		},
		{
			name:     "invalid data",
			scenario: &Scenario{Name: "s", Data: "<http://ex/s> <http://ex/p>"},
			wantErr:  "scenario data",
		},
		{
			name: "invalid row term",
			scenario: &Scenario{Name: "s", Entries: []EntrySpec{
				{Variables: []string{"x"}, Rows: []map[string]string{{"x": "<oops"}}},
			}},
			wantErr: "entries[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSnapshot_Marshal(t *testing.T) {
	result := NewResult()
	result.Plan = []join.PlanNode{{Strategy: "hash"}}
	result.Strategy = "hash"

	data, err := NewSnapshot("tiny", result).Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{
  "scenario": "tiny",
  "strategy": "hash",
  "plan": [
    "hash"
  ],
  "rows": []
}
`, string(data))
}
