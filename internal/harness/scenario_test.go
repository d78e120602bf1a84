package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
name: test_scenario
description: "Test scenario for validation"
type: optional
entries:
  - name: L
    variables: [x]
    rows:
      - {x: "<http://ex/a>"}
  - name: R
    variables: [x, "y?"]
    cardinality: 5
    cardinality_type: estimate
assertions:
  - type: row_count
    count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "optional", scenario.Type)
	require.Len(t, scenario.Entries, 2)
	assert.Equal(t, []string{"x", "y?"}, scenario.Entries[1].Variables)
	require.NotNil(t, scenario.Entries[1].Cardinality)
	assert.Equal(t, 5.0, *scenario.Entries[1].Cardinality)
	assert.Equal(t, "<http://ex/a>", scenario.Entries[0].Rows[0]["x"])
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Fixtures(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)
		assert.Equal(t, scenario.Name+".yaml", filepath.Base(path), "scenario name should match its file")
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown field",
			yaml: `
name: s
description: d
entires: []
assertions: [{type: row_count}]
`,
			wantErr: "field entires not found",
		},
		{
			name: "missing name",
			yaml: `
description: d
assertions: [{type: row_count}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: s
assertions: [{type: row_count}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing assertions",
			yaml: `
name: s
description: d
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown join type",
			yaml: `
name: s
description: d
type: cross
assertions: [{type: row_count}]
`,
			wantErr: `unknown join type "cross"`,
		},
		{
			name: "pattern without data",
			yaml: `
name: s
description: d
entries:
  - pattern: "?s ?p ?o"
assertions: [{type: row_count}]
`,
			wantErr: "entries[0]: pattern entries need scenario data",
		},
		{
			name: "pattern with rows",
			yaml: `
name: s
description: d
data: "<http://ex/s> <http://ex/p> <http://ex/o>"
entries:
  - pattern: "?s ?p ?o"
    variables: [s]
assertions: [{type: row_count}]
`,
			wantErr: "entries[0]: pattern entries cannot declare rows or variables",
		},
		{
			name: "rows without variables",
			yaml: `
name: s
description: d
entries:
  - rows: [{x: "<http://ex/a>"}]
assertions: [{type: row_count}]
`,
			wantErr: "entries[0]: variables are required for inline rows",
		},
		{
			name: "bad cardinality type",
			yaml: `
name: s
description: d
entries:
  - variables: [x]
    cardinality_type: guess
assertions: [{type: row_count}]
`,
			wantErr: "entries[0]",
		},
		{
			name: "unknown assertion",
			yaml: `
name: s
description: d
assertions: [{type: trace_contains}]
`,
			wantErr: `assertions[0]: unknown assertion type "trace_contains"`,
		},
		{
			name: "strategy assertion without strategy",
			yaml: `
name: s
description: d
assertions: [{type: strategy}]
`,
			wantErr: "assertions[0]: strategy is required",
		},
		{
			name: "plan assertion without plan",
			yaml: `
name: s
description: d
assertions: [{type: plan}]
`,
			wantErr: "assertions[0]: plan is required",
		},
		{
			name: "error assertion without code",
			yaml: `
name: s
description: d
assertions: [{type: error}]
`,
			wantErr: "assertions[0]: code is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRows(t *testing.T) {
	rows, err := ParseRows([]map[string]string{
		{"x": "<http://ex/a>", "n": `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Len())
	assert.Equal(t, 0, rows[1].Len())

	_, err = ParseRows([]map[string]string{{"x": "<unterminated"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 ?x")
}
