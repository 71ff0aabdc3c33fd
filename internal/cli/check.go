package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"fixity/internal/checksum"
	"fixity/internal/config"
	"fixity/internal/engine"
	"fixity/internal/model"
	"fixity/internal/report"
	"fixity/internal/scan"
	"fixity/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Config    string
	Database  string   // overrides the config's database path
	Overrides []string // merged with the config's override list
	Workers   int
}

// CheckResult is the JSON payload for a completed run.
type CheckResult struct {
	RunID     string           `json:"run_id"`
	Files     int64            `json:"files"`
	Bytes     int64            `json:"bytes"`
	Anomalies int64            `json:"anomalies"`
	ElapsedMS int64            `json:"elapsed_ms"`
	Counts    map[string]int64 `json:"counts"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify configured roots against the baseline",
		Long: `Run one reconciliation pass: enumerate every configured root, compare
each file's checksum and modification time against the baseline, and
report additions, removals, confirmations, and anomalies.

Exit code 0 means a clean run, 1 means anomalies were detected (or the
run aborted), 2 means the configuration or setup was invalid.

Example:
  fixity check --config fixity.yaml
  fixity check --config fixity.yaml --override /archive/restored.bin -v`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "baseline database path (overrides config)")
	cmd.Flags().StringArrayVar(&opts.Overrides, "override", nil, "record key to force-accept this run (repeatable)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "digest worker count (default: number of CPUs)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		db, err := filepath.Abs(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid database path", err)
		}
		cfg.Database = db
	}

	// Configure logging based on verbose flag
	verbose := opts.Verbose || cfg.VerboseOutput
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	if err := cfg.CheckRoots(); err != nil {
		return WrapExitError(ExitCommandError, "invalid scan roots", err)
	}

	algorithm, err := checksum.Parse(cfg.ChecksumAlgorithm)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	policy, err := engine.ParseModifiedPolicy(cfg.OnUnexpectedModification)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	overrides, err := mergeOverrides(cfg.Overrides, opts.Overrides)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid override", err)
	}

	slog.Info("opening baseline", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open baseline database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing baseline database", "error", closeErr)
		}
	}()

	// Event output destination: stdout for text, stderr when the final
	// JSON envelope owns stdout; optionally teed to the configured file.
	eventWriter := cmd.OutOrStdout()
	if opts.Format == "json" {
		eventWriter = cmd.ErrOrStderr()
	}
	if cfg.OutputFile != "" {
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open output file", err)
		}
		defer f.Close()
		eventWriter = io.MultiWriter(eventWriter, f)
	}
	sink := report.NewText(eventWriter, verbose)

	// The baseline and report file must never track themselves: the run
	// rewrites both, so a baseline inside a scan root would report a
	// modification on every subsequent run.
	excluded := []string{cfg.Database}
	if cfg.OutputFile != "" {
		excluded = append(excluded, cfg.OutputFile)
	}
	walker := scan.NewWalker(scan.WithExcludedPaths(excluded...))
	digester := checksum.NewDigester(afs.New())

	// Setup signal handling for graceful shutdown
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// Pre-run totals make a 12-hour pass over spinning media legible.
	var total int64
	for _, dir := range cfg.DirectoriesToScan {
		n, err := walker.Count(ctx, dir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to count files", err)
		}
		total += n
	}
	slog.Info("starting verification", "files_to_check", total, "roots", len(cfg.DirectoriesToScan))

	engineOpts := []engine.Option{
		engine.WithOverrides(overrides),
		engine.WithModifiedPolicy(policy),
	}
	if opts.Workers > 0 {
		engineOpts = append(engineOpts, engine.WithWorkers(opts.Workers))
	}
	source := &progressSource{inner: walker, total: total, every: progressInterval}
	eng := engine.New(st, source, digester, algorithm, engineOpts...)

	stats, err := eng.Run(ctx, cfg.DirectoriesToScan, sink)
	if err != nil {
		return WrapExitError(ExitFailure, "run aborted", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		if err := formatter.Success(checkResult(stats)); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode result", err)
		}
	} else {
		report.Summary(eventWriter, stats)
	}

	if n := stats.Anomalies(); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d anomalies detected", n))
	}
	return nil
}

func checkResult(stats *engine.Stats) CheckResult {
	counts := make(map[string]int64, len(stats.Counts))
	for kind, n := range stats.Counts {
		counts[kind.String()] = n
	}
	return CheckResult{
		RunID:     stats.RunID,
		Files:     stats.FilesSeen,
		Bytes:     stats.BytesRead,
		Anomalies: stats.Anomalies(),
		ElapsedMS: stats.Elapsed.Milliseconds(),
		Counts:    counts,
	}
}

// progressInterval is how many enumerated files pass between progress
// log lines. Variable so tests can tighten it.
var progressInterval int64 = 1000

// progressSource wraps the walker to log periodic progress against the
// pre-run total, keeping a multi-hour pass over spinning media legible.
type progressSource struct {
	inner engine.Source
	total int64
	seen  int64
	every int64
}

func (p *progressSource) Walk(ctx context.Context, dir config.Directory, fn func(model.Observation) error) error {
	return p.inner.Walk(ctx, dir, func(obs model.Observation) error {
		p.seen++
		if p.every > 0 && p.seen%p.every == 0 {
			slog.Info("progress", "enumerated", p.seen, "total", p.total)
		}
		return fn(obs)
	})
}

// mergeOverrides canonicalizes command-line override keys and appends
// them to the config's (already canonical) list.
func mergeOverrides(fromConfig, fromFlags []string) ([]string, error) {
	merged := append([]string(nil), fromConfig...)
	for _, key := range fromFlags {
		abs, err := filepath.Abs(key)
		if err != nil {
			return nil, fmt.Errorf("resolve override %s: %w", key, err)
		}
		merged = append(merged, model.CanonicalKey(abs))
	}
	return merged, nil
}
