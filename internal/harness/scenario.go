package harness

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/comunica/comunica-sub013/internal/join"
	"github.com/comunica/comunica-sub013/internal/metadata"
)

// Scenario defines a join test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Type is the logical join type: inner (default), optional or minus.
	Type string `yaml:"type,omitempty"`

	// Config is optional CUE source configuring the engine.
	Config string `yaml:"config,omitempty"`

	// Data holds quads, one per line, for pattern entries.
	Data string `yaml:"data,omitempty"`

	// Entries are the join inputs, in order.
	Entries []EntrySpec `yaml:"entries"`

	// Assertions validate the join result.
	Assertions []Assertion `yaml:"assertions"`
}

// EntrySpec is one join input: inline rows or a quad pattern.
type EntrySpec struct {
	Name string `yaml:"name"`

	// Pattern is a quad pattern evaluated against Data.
	Pattern string `yaml:"pattern,omitempty"`

	// Variables declares the entry's variables. Required for inline rows.
	Variables []string `yaml:"variables,omitempty"`

	// Rows maps variable names to terms in textual form.
	Rows []map[string]string `yaml:"rows,omitempty"`

	// Cardinality overrides the advertised count.
	Cardinality *float64 `yaml:"cardinality,omitempty"`

	// CardinalityType is exact (default) or estimate.
	CardinalityType string `yaml:"cardinality_type,omitempty"`

	// RequestTime is the advertised cost of the first row.
	RequestTime float64 `yaml:"request_time,omitempty"`

	// FailAfter makes the stream fail once its rows are exhausted.
	FailAfter string `yaml:"fail_after,omitempty"`
}

// Assertion validates the join result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Rows is the expected result (rows).
	Rows []map[string]string `yaml:"rows,omitempty"`

	// Count is the expected row count (row_count).
	Count int `yaml:"count,omitempty"`

	// Strategy is the expected top-level strategy (strategy).
	Strategy string `yaml:"strategy,omitempty"`

	// Plan lists the expected strategies in selection order (plan).
	Plan []string `yaml:"plan,omitempty"`

	// Cardinality and CardinalityType describe the expected result
	// cardinality (cardinality).
	Cardinality     float64 `yaml:"cardinality,omitempty"`
	CardinalityType string  `yaml:"cardinality_type,omitempty"`

	// Variables are the expected result variables (variables).
	Variables []string `yaml:"variables,omitempty"`

	// Code is the expected join error code (error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertRows          = "rows"
	AssertRowCount      = "row_count"
	AssertStrategy      = "strategy"
	AssertPlan          = "plan"
	AssertCardinality   = "cardinality"
	AssertVariables     = "variables"
	AssertError         = "error"
	AssertEntriesClosed = "entries_closed"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, errors.Wrap(err, "invalid scenario")
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if _, err := join.ParseLogicalType(s.Type); err != nil {
		return err
	}
	if len(s.Assertions) == 0 {
		return errors.New("assertions list is required and must be non-empty")
	}

	for i, e := range s.Entries {
		if e.Pattern != "" {
			if len(e.Rows) > 0 || len(e.Variables) > 0 {
				return errors.Newf("entries[%d]: pattern entries cannot declare rows or variables", i)
			}
			if s.Data == "" {
				return errors.Newf("entries[%d]: pattern entries need scenario data", i)
			}
		}
		if e.Pattern == "" && len(e.Rows) > 0 && len(e.Variables) == 0 {
			return errors.Newf("entries[%d]: variables are required for inline rows", i)
		}
		if _, err := metadata.ParseCardinalityType(defaultString(e.CardinalityType, "exact")); err != nil {
			return errors.Wrapf(err, "entries[%d]", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertRows, AssertRowCount, AssertEntriesClosed:
		case AssertStrategy:
			if a.Strategy == "" {
				return errors.Newf("assertions[%d]: strategy is required", i)
			}
		case AssertPlan:
			if len(a.Plan) == 0 {
				return errors.Newf("assertions[%d]: plan is required", i)
			}
		case AssertCardinality:
			if _, err := metadata.ParseCardinalityType(defaultString(a.CardinalityType, "exact")); err != nil {
				return errors.Wrapf(err, "assertions[%d]", i)
			}
		case AssertVariables:
		case AssertError:
			if a.Code == "" {
				return errors.Newf("assertions[%d]: code is required", i)
			}
		default:
			return errors.Newf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
