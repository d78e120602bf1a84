package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comunica/comunica-sub013/internal/bindings"
	"github.com/comunica/comunica-sub013/internal/harness"
	"github.com/comunica/comunica-sub013/internal/join"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a join scenario",
		Long: `Execute a join scenario and print its result rows.

Text output lists the chosen strategy, the result metadata and the rows.
JSON output is a SPARQL 1.1 JSON results document. Assertion failures are
reported on stderr.

Exit codes:
  0 - Join ran and every assertion held
  1 - An assertion failed
  2 - Command error (unreadable scenario, invalid config, etc.)

Example:
  joinctl run ./scenarios/hash_probe.yaml
  joinctl run ./scenarios/hash_probe.yaml --format json --config tuned.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioCommand(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runScenarioCommand(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	scenario, result, err := executeScenario(commandContext(cmd), opts, path, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	formatter.VerboseLog("scenario %s: %d plan node(s)", scenario.Name, len(result.Plan))

	if formatter.JSON() {
		if result.Err == nil {
			if err := bindings.WriteResults(formatter.Writer, resultVariables(result), result.Rows); err != nil {
				return WrapExitError(ExitCommandError, "failed to write results", err)
			}
		} else {
			code, _ := join.CodeOf(result.Err)
			if err := formatter.Error(string(code), result.Err.Error(), nil); err != nil {
				return err
			}
		}
	} else {
		writeResultText(formatter.Writer, result)
	}

	if !result.Pass {
		for _, e := range result.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s: %d assertion(s) failed", scenario.Name, len(result.Errors)))
	}
	return nil
}

// executeScenario loads and runs the scenario at path, logging to logW.
func executeScenario(ctx context.Context, opts *RootOptions, path string, logW io.Writer) (*harness.Scenario, *harness.Result, error) {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	runOpts := []harness.Option{harness.WithLogger(opts.Logger(logW))}
	if cfg != nil {
		runOpts = append(runOpts, harness.WithConfig(cfg))
	}
	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to run scenario", err)
	}
	return scenario, result, nil
}

// resultVariables names the result columns: the metadata variables when
// known, otherwise every variable bound by some row.
func resultVariables(result *harness.Result) []string {
	if result.Metadata != nil {
		vars := make([]string, len(result.Metadata.Variables))
		for i, v := range result.Metadata.Variables {
			vars[i] = v.Name
		}
		return vars
	}
	var vars []string
	for _, row := range result.Rows {
		for _, v := range row.Variables() {
			if !slices.Contains(vars, v) {
				vars = append(vars, v)
			}
		}
	}
	slices.Sort(vars)
	return vars
}

func writeResultText(w io.Writer, result *harness.Result) {
	if result.Strategy != "" {
		fmt.Fprintf(w, "strategy: %s\n", result.Strategy)
	}
	if result.Err != nil {
		fmt.Fprintf(w, "join failed: %v\n", result.Err)
	}
	if result.Metadata != nil {
		fmt.Fprintf(w, "cardinality: %s\n", result.Metadata.Cardinality)
		names := make([]string, len(result.Metadata.Variables))
		for i, v := range result.Metadata.Variables {
			names[i] = "?" + v.String()
		}
		fmt.Fprintf(w, "variables: %s\n", strings.Join(names, " "))
	}
	if result.Err == nil {
		fmt.Fprintf(w, "rows (%d):\n", len(result.Rows))
		for _, row := range result.Rows {
			fmt.Fprintf(w, "  %s\n", row)
		}
	}
	if result.Pass {
		fmt.Fprintln(w, "✓ all assertions passed")
	} else {
		fmt.Fprintf(w, "✗ %d assertion(s) failed\n", len(result.Errors))
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
