// Package config loads join engine configuration from CUE files and builds
// engines from it.
//
// A configuration file is a CUE struct checked against an embedded schema:
//
//	weights: {
//		iterations:      1
//		persisted_items: 2
//		blocking_items:  1
//		request_time:    0.5
//	}
//	sort:      "selectivity"        // or "cardinality", "none"
//	estimator: "variable-counting"  // or "cardinality"
//	strategies: ["single", "hash", "nested-loop"]
//
// Every field is optional; omitted fields take the built-in defaults.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/cockroachdb/errors"

	"github.com/comunica/comunica-sub013/internal/entrysort"
	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/joinstrategy"
)

//go:embed schema.cue
var schemaCUE string

// Sorter names.
const (
	SortSelectivity = "selectivity"
	SortCardinality = "cardinality"
	SortNone        = "none"
)

// Estimator names.
const (
	EstimatorCardinality      = "cardinality"
	EstimatorVariableCounting = "variable-counting"
)

// Config selects the strategies, sorter and cost weights of a join engine.
type Config struct {
	Weights    join.Weights `json:"weights"`
	Sort       string       `json:"sort"`
	Estimator  string       `json:"estimator"`
	Strategies []string     `json:"strategies"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Weights:    join.DefaultWeights(),
		Sort:       SortSelectivity,
		Estimator:  EstimatorCardinality,
		Strategies: append([]string(nil), joinstrategy.DefaultNames...),
	}
}

// Load reads and validates the CUE file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data, path)
}

// Parse validates CUE source against the schema and decodes it.
// filename is only used in error positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, "compile embedded schema")
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &Config{}
	if err := unified.Decode(cfg); err != nil {
		return nil, formatCUEError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks constraints the schema cannot express.
func (c *Config) Validate() error {
	if len(c.Strategies) == 0 {
		return &CompileError{Field: "strategies", Message: "at least one strategy is required"}
	}
	seen := make(map[string]bool, len(c.Strategies))
	for _, name := range c.Strategies {
		if seen[name] {
			return &CompileError{Field: "strategies", Message: fmt.Sprintf("strategy %q listed twice", name)}
		}
		seen[name] = true
	}
	switch c.Sort {
	case SortSelectivity, SortCardinality, SortNone:
	default:
		return &CompileError{Field: "sort", Message: fmt.Sprintf("unknown sorter %q", c.Sort)}
	}
	switch c.Estimator {
	case EstimatorCardinality, EstimatorVariableCounting:
	default:
		return &CompileError{Field: "estimator", Message: fmt.Sprintf("unknown estimator %q", c.Estimator)}
	}
	return nil
}

// NewEstimator returns the configured selectivity estimator.
func (c *Config) NewEstimator() entrysort.Estimator {
	if c.Estimator == EstimatorVariableCounting {
		return entrysort.VariableCountingEstimator{}
	}
	return entrysort.CardinalityEstimator{}
}

// NewSorter returns the configured entry sorter, or nil for "none".
func (c *Config) NewSorter(logger *slog.Logger) join.Sorter {
	switch c.Sort {
	case SortCardinality:
		return entrysort.NewCardinality(entrysort.WithLogger(logger))
	case SortNone:
		return nil
	default:
		return entrysort.NewSelectivity(c.NewEstimator(), entrysort.WithLogger(logger))
	}
}

// NewEngine builds a join engine from the configuration.
func (c *Config) NewEngine(logger *slog.Logger) (*join.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sorter := c.NewSorter(logger)
	m := join.NewMediator(join.WithWeights(c.Weights), join.WithLogger(logger))
	strategies, err := joinstrategy.ByName(c.Strategies, sorter, m)
	if err != nil {
		return nil, err
	}
	m.Register(strategies...)

	opts := []join.EngineOption{join.WithEngineLogger(logger)}
	if sorter != nil {
		opts = append(opts, join.WithSorter(sorter))
	}
	return join.NewEngine(m, opts...), nil
}

// CompileError is a configuration error, with its source position when
// known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	ce := &CompileError{Field: "cue", Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
