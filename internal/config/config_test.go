package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunica/comunica-sub013/internal/entrysort"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/stream"
	"github.com/comunica/comunica-sub013/internal/testutil"
)

func TestParseEmptyMatchesDefault(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.cue")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "tuned.cue"))
	require.NoError(t, err)

	assert.Equal(t, join.Weights{Iterations: 1, PersistedItems: 4, BlockingItems: 4, RequestTime: 0.5}, cfg.Weights)
	assert.Equal(t, SortCardinality, cfg.Sort)
	assert.Equal(t, EstimatorVariableCounting, cfg.Estimator)
	assert.Equal(t, []string{"none", "single", "multi-empty", "hash", "nested-loop", "multi-smallest"}, cfg.Strategies)
	assert.IsType(t, entrysort.VariableCountingEstimator{}, cfg.NewEstimator())
	assert.IsType(t, &entrysort.Cardinality{}, cfg.NewSorter(nil))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{name: "negative weight", src: `weights: iterations: -1`, wantMsg: "cue"},
		{name: "unknown sorter", src: `sort: "random"`, wantMsg: "cue"},
		{name: "unknown strategy", src: `strategies: ["hash", "sort-merge"]`, wantMsg: "cue"},
		{name: "unknown field", src: `threads: 4`, wantMsg: "cue"},
		{name: "syntax error", src: `weights: {`, wantMsg: "cue"},
		{name: "duplicate strategy", src: `strategies: ["hash", "hash"]`, wantMsg: `strategy "hash" listed twice`},
		{name: "no strategies", src: `strategies: []`, wantMsg: "at least one strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCompileErrorPosition(t *testing.T) {
	_, err := Parse([]byte("sort: \"cardinality\"\nweights: {\n"), "pos.cue")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "pos.cue:")
}

func TestNewEngineHonoursStrategies(t *testing.T) {
	cfg := Default()
	cfg.Strategies = []string{"nested-loop"}
	engine, err := cfg.NewEngine(nil)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range engine.Mediator().Strategies() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"nested-loop"}, names)

	left, _ := testutil.ExactEntry("L", testutil.Vars("x"), testutil.Row("x", "1"), testutil.Row("x", "2"))
	right, _ := testutil.ExactEntry("R", testutil.Vars("x"), testutil.Row("x", "2"))
	res, err := engine.Join(context.Background(), join.Inner, []join.Entry{left, right})
	require.NoError(t, err)
	assert.Equal(t, "nested-loop", res.Strategy)

	rows, err := stream.Collect(context.Background(), res.Stream)
	require.NoError(t, err)
	assert.Equal(t, []string{`{?x="2"^^<http://www.w3.org/2001/XMLSchema#integer>}`}, testutil.Canonical(rows))
}

func TestNewEngineUsesWeights(t *testing.T) {
	cfg := Default()
	cfg.Weights = join.Weights{Iterations: 2, PersistedItems: 0, BlockingItems: 0, RequestTime: 0}
	engine, err := cfg.NewEngine(nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Weights, engine.Mediator().Weights())
}
