package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"fixity/internal/model"
	"fixity/internal/store"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	Database string
}

// recordView is the JSON payload for a baseline record.
type recordView struct {
	Path         string `json:"path"`
	Checksum     string `json:"checksum"`
	Algorithm    string `json:"algorithm,omitempty"`
	LastModified string `json:"last_modified"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup <path>",
		Short: "Show the baseline record for a file",
		Long: `Print the stored checksum, algorithm, and last-modified time for a
tracked path. Useful when investigating a reported anomaly.

Example:
  fixity lookup /archive/photos/img0001.raw --db fixity.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "baseline database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLookup(opts *LookupOptions, path string, cmd *cobra.Command) error {
	key, err := canonicalArg(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid path", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open baseline database", err)
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), key)
	if err != nil {
		return WrapExitError(ExitFailure, "lookup failed", err)
	}
	if rec == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("no baseline record for %s", key))
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(recordView{
			Path:         rec.Key,
			Checksum:     rec.Checksum,
			Algorithm:    rec.Algorithm,
			LastModified: rec.LastModified.UTC().Format(time.RFC3339Nano),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:          %s\n", rec.Key)
	fmt.Fprintf(out, "checksum:      %s\n", rec.Checksum)
	if rec.Algorithm != "" {
		fmt.Fprintf(out, "algorithm:     %s\n", rec.Algorithm)
	}
	fmt.Fprintf(out, "last modified: %s\n", rec.LastModified.UTC().Format(time.RFC3339Nano))
	return nil
}

// canonicalArg resolves a user-supplied path to a canonical record key.
func canonicalArg(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return model.CanonicalKey(abs), nil
}
