package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fixity/internal/store"
)

// ForgetOptions holds flags for the forget command.
type ForgetOptions struct {
	*RootOptions
	Database string
}

// NewForgetCommand creates the forget command.
func NewForgetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ForgetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forget <path>",
		Short: "Delete the baseline record for a file",
		Long: `Remove a path from the baseline. The file itself is untouched; the
next run that observes the path records it as new.

Example:
  fixity forget /archive/photos/img0001.raw --db fixity.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForget(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "baseline database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runForget(opts *ForgetOptions, path string, cmd *cobra.Command) error {
	key, err := canonicalArg(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid path", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open baseline database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	rec, err := st.Get(ctx, key)
	if err != nil {
		return WrapExitError(ExitFailure, "lookup failed", err)
	}
	if rec == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("no baseline record for %s", key))
	}

	if err := st.Delete(ctx, key); err != nil {
		return WrapExitError(ExitFailure, "delete failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", key)
	return nil
}
