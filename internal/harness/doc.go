// Package harness runs join scenarios described in YAML files.
//
// # Scenario Format
//
//	name: hash_probe
//	description: "Hash join probes the smaller side"
//	type: inner                  # inner, optional or minus
//	config: |                    # optional CUE engine configuration
//	  strategies: ["hash", "nested-loop"]
//	data: |                      # optional quads for pattern entries
//	  <http://ex/a> <http://ex/p> <http://ex/b> .
//	entries:
//	  - name: B
//	    variables: [x, y]        # "y?" marks a variable that may be unbound
//	    rows:
//	      - {x: "<http://ex/1>", y: "<http://ex/2>"}
//	  - name: P
//	    pattern: "?x <http://ex/p> ?z"
//	assertions:
//	  - type: strategy
//	    strategy: hash
//	  - type: rows
//	    rows:
//	      - {x: "<http://ex/1>", y: "<http://ex/2>", z: "<http://ex/3>"}
//
// Inline entries default to an exact cardinality equal to their row count;
// cardinality and cardinality_type override what the metadata advertises.
// Pattern entries are answered by an in-memory quad store holding data.
//
// # Assertion Types
//
//   - rows: the result equals the given rows as a multiset
//   - row_count: the result has exactly count rows
//   - strategy: the top-level join used the named strategy
//   - plan: every selection, nested ones included, in order
//   - cardinality: the result metadata advertises this cardinality
//   - variables: the result metadata declares these variables
//   - error: the join failed with this error code
//   - entries_closed: every inline entry stream was closed exactly once
//
// # Deterministic Testing
//
// Join IDs come from a sequence generator and logs are discarded, so
// golden snapshots are identical across runs.
package harness
