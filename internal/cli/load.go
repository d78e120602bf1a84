package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comunica/comunica-sub013/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
}

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	Database string `json:"database"`
	Read     int    `json:"read"`
	Added    int    `json:"added"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <quads-file>",
		Short: "Load quads into a SQLite store",
		Long: `Load quads into a SQLite quad store, creating it if needed.

The input holds one triple or quad per line as whitespace-separated terms
(<iri>, _:blank, "literal"@lang, "literal"^^<type>, or a bare number).
Blank lines and lines starting with # are skipped. Quads already present
are ignored.

Example:
  joinctl load --db ./quads.db ./data.nq`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(opts *LoadOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	f, err := os.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("cannot open %s", path), nil)
		return WrapExitError(ExitCommandError, "failed to open quads file", err)
	}
	defer f.Close()

	quads, err := store.ParseQuads(f)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid quads", err)
	}

	st, err := store.Open(opts.Database, store.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	added, err := st.Insert(commandContext(cmd), quads...)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to insert quads", err)
	}

	formatter.VerboseLog("parsed %d quads from %s", len(quads), path)
	if formatter.JSON() {
		return formatter.Success(LoadResult{Database: opts.Database, Read: len(quads), Added: added})
	}
	return formatter.Success(fmt.Sprintf("✓ loaded %d quads (%d new) into %s", len(quads), added, opts.Database))
}
