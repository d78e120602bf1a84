package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/comunica/comunica-sub013/internal/config"
	"github.com/comunica/comunica-sub013/internal/harness"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"` // "config" | "scenario"
	Valid bool   `json:"valid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml|config.cue>",
		Short: "Validate a scenario or join configuration",
		Long: `Validate a scenario file or a CUE join configuration without
running anything.

Scenarios are checked for unknown fields, required fields and known
assertion types; an embedded config is validated too. Configurations are
unified with the built-in schema.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("path not found: %s", path), nil)
		return WrapExitError(ExitCommandError, "path not found", err)
	}

	var kind string
	var err error
	switch filepath.Ext(path) {
	case ".cue":
		kind = "config"
		_, err = config.Load(path)
	case ".yaml", ".yml":
		kind = "scenario"
		err = validateScenarioFile(path)
	default:
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("unsupported file type: %s", path), nil)
		return NewExitError(ExitCommandError, "unsupported file type")
	}

	if err != nil {
		var details any
		var cerr *config.CompileError
		if errors.As(err, &cerr) && cerr.Pos.IsValid() {
			details = map[string]string{"pos": cerr.Pos.String()}
		}
		_ = formatter.Error(ErrCodeInvalid, err.Error(), details)
		return WrapExitError(ExitFailure, fmt.Sprintf("invalid %s", kind), err)
	}

	formatter.VerboseLog("validated %s %s", kind, path)
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Path: path, Kind: kind, Valid: true})
	}
	return formatter.Success(fmt.Sprintf("✓ %s valid", kind))
}

func validateScenarioFile(path string) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return err
	}
	if scenario.Config == "" {
		return nil
	}
	_, err = config.Parse([]byte(scenario.Config), scenario.Name+".cue")
	return errors.Wrap(err, "scenario config")
}
