package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturerun/internal/harness"
	"github.com/roach88/fixturerun/internal/manifest"
	"github.com/roach88/fixturerun/internal/report"
	"github.com/roach88/fixturerun/internal/store"
	"github.com/roach88/fixturerun/internal/tool"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Suite    SuiteOptions
	Jobs     int
	FailFast bool
	Timeout  time.Duration
	Update   bool
	ArgsMode string
	Database string

	// Tool overrides the exec-backed tool (for testing).
	Tool tool.Tool

	// Now and NewID override the run clock and id source (for testing).
	Now   func() time.Time
	NewID func() string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every manifest case against the tool",
		Long: `Run every case in the manifest against the tool under test.

Each case pipes its input fixture to the tool's stdin, appends the
arguments from its cmd fixture, and compares stdout with the expected
fixture byte for byte. Any stderr output or non-zero exit fails the case.

By default every case runs and a summary is printed. With --fail-fast the
run stops at the first failure and cases in flight are cancelled.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed, or the run was interrupted
  2 - Configuration error (no $srcdir, bad manifest, missing fixture, etc.)

Examples:
  srcdir=. fixturerun run
  fixturerun run --srcdir . --tool ./jup --jobs 4
  fixturerun run --srcdir . --filter 'edit-*' --fail-fast
  fixturerun run --srcdir . --db ./history.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, cmd)
		},
	}

	opts.Suite.register(cmd)
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "cases to run concurrently")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first failed case")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-case tool timeout (0 means none)")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite expected-output fixtures that do not match")
	cmd.Flags().StringVar(&opts.ArgsMode, "args-mode", string(tool.ArgModeShell), "how cmd fixtures become arguments (shell|single)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runSuite(opts *RunOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	argMode, err := tool.ParseArgMode(opts.ArgsMode)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "invalid --args-mode", err).WithReason(ErrCodeInvalidFlag))
	}
	if opts.Jobs < 1 {
		return formatter.Fail(NewExitError(ExitCommandError, fmt.Sprintf("--jobs must be at least 1, got %d", opts.Jobs)).WithReason(ErrCodeInvalidFlag))
	}
	if opts.Timeout < 0 {
		return formatter.Fail(NewExitError(ExitCommandError, fmt.Sprintf("--timeout must not be negative, got %s", opts.Timeout)).WithReason(ErrCodeInvalidFlag))
	}

	s, err := loadSuite(opts.Suite)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := s.manifest.Check(); err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "fixture check failed", err).WithReason(ErrCodeFixture))
	}
	slog.Debug("manifest loaded",
		"path", s.manifest.Path,
		"cases", len(s.manifest.Cases),
		"selected", len(s.cases),
		"digest", s.manifest.Digest)

	// Opened before any case launches; a bad path is a configuration error.
	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "failed to open database", err).WithReason(ErrCodeDatabase))
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	t := opts.Tool
	if t == nil {
		t = tool.NewExecTool(s.config.ToolPath)
	}

	var reporter harness.Reporter
	if opts.Format != "json" {
		reporter = report.NewText(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	h := harness.New(t, manifest.NewFixtures(s.manifest.Dir), harness.Options{
		FailFast: opts.FailFast,
		Jobs:     opts.Jobs,
		Timeout:  opts.Timeout,
		ArgMode:  argMode,
		Update:   opts.Update,
		Now:      opts.Now,
		NewID:    opts.NewID,
	}, reporter).WithLogger(slog.Default().With("tool", s.config.ToolPath))

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Warn("received signal, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	rep, runErr := h.Run(ctx, s.cases)
	summary := report.Summarize(rep)

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: summary, RunID: rep.RunID}
		if !rep.Pass() || runErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeTestFailed,
				Message: fmt.Sprintf("%d of %d tests failed", rep.Failed, rep.Total()),
			}
			if runErr != nil {
				resp.Error.Code = ErrCodeInterrupted
				resp.Error.Message = runErr.Error()
			}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	}

	if st != nil {
		// Interrupted runs are recorded too.
		if err := recordRun(context.WithoutCancel(ctx), st, s, opts, rep, summary); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err).WithReason(ErrCodeDatabase)
		}
		slog.Debug("run recorded", "run_id", rep.RunID, "db", opts.Database)
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "run cancelled", runErr).WithReason(ErrCodeInterrupted)
	}
	if !rep.Pass() {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d tests failed", rep.Failed, rep.Total())).
			WithReason(ErrCodeTestFailed)
	}
	return nil
}

// recordRun stores the report, using the same per-case kinds and messages
// as the JSON summary.
func recordRun(ctx context.Context, st *store.Store, s *suite, opts *RunOptions, rep *harness.Report, summary report.Summary) error {
	run := store.Run{
		ID:             rep.RunID,
		StartedAt:      rep.StartedAt,
		Duration:       rep.Duration,
		ManifestPath:   s.manifest.Path,
		ManifestDigest: s.manifest.Digest,
		ToolPath:       s.config.ToolPath,
		FailFast:       opts.FailFast,
		Passed:         rep.Passed,
		Failed:         rep.Failed,
		Skipped:        rep.Skipped,
		Total:          rep.Total(),
	}

	cases := make([]store.CaseRecord, len(rep.Results))
	for i, res := range rep.Results {
		cs := summary.Cases[i]
		cases[i] = store.CaseRecord{
			Index:        res.Case.Index,
			Description:  res.Case.Description,
			Status:       res.Status.String(),
			ErrorKind:    cs.Kind,
			Message:      cs.Message,
			Duration:     res.Duration,
			StdoutDigest: res.StdoutDigest(),
		}
	}

	return st.RecordRun(ctx, run, cases)
}
