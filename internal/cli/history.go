package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturerun/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Case     string
	Prune    time.Duration

	// Now overrides the clock used by --prune (for testing).
	Now func() time.Time
}

// RunListing is a recorded run in JSON output.
type RunListing struct {
	ID             string `json:"id"`
	StartedAt      string `json:"started_at"`
	DurationMS     int64  `json:"duration_ms"`
	Manifest       string `json:"manifest"`
	ManifestDigest string `json:"manifest_digest"`
	Tool           string `json:"tool"`
	FailFast       bool   `json:"fail_fast,omitempty"`
	Passed         int    `json:"passed"`
	Failed         int    `json:"failed"`
	Skipped        int    `json:"skipped"`
	Total          int    `json:"total"`
}

// CaseRecordListing is a recorded case in JSON output.
type CaseRecordListing struct {
	Index        int    `json:"index"`
	Description  string `json:"desc"`
	Status       string `json:"status"`
	Kind         string `json:"kind,omitempty"`
	Message      string `json:"message,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	StdoutDigest string `json:"stdout_digest,omitempty"`
}

// RunDetail is one run with its cases.
type RunDetail struct {
	Run   RunListing          `json:"run"`
	Cases []CaseRecordListing `json:"cases"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return newHistoryCommand(&HistoryOptions{RootOptions: rootOpts})
}

func newHistoryCommand(opts *HistoryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded with 'fixturerun run --db'.

Without arguments, lists recent runs newest first. With a run id, shows
that run's cases. With --case, shows one case's results across runs.
--prune deletes runs older than the given age before listing.

Examples:
  fixturerun history --db ./history.db
  fixturerun history --db ./history.db --limit 5
  fixturerun history --db ./history.db 0190a1b2-...
  fixturerun history --db ./history.db --case "edit nested key"
  fixturerun history --db ./history.db --prune 720h`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Case, "case", "", "show history for the case with this description")
	cmd.Flags().DurationVar(&opts.Prune, "prune", 0, "delete runs older than this age first")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if runID != "" && opts.Case != "" {
		return formatter.Fail(NewExitError(ExitCommandError, "a run id and --case cannot be combined").WithReason(ErrCodeInvalidFlag))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to open database", err).WithReason(ErrCodeDatabase))
	}
	defer st.Close()

	if opts.Prune > 0 {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		n, err := st.DeleteRunsBefore(ctx, now().Add(-opts.Prune))
		if err != nil {
			return formatter.Fail(WrapExitError(ExitCommandError, "failed to prune runs", err).WithReason(ErrCodeDatabase))
		}
		formatter.VerboseLog("Pruned %d run(s) older than %s", n, opts.Prune)
	}

	switch {
	case runID != "":
		return showRun(ctx, st, formatter, runID)
	case opts.Case != "":
		return showCase(ctx, st, formatter, opts.Case, opts.Limit)
	default:
		return listRuns(ctx, st, formatter, opts.Limit)
	}
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to read runs", err).WithReason(ErrCodeDatabase))
	}

	if formatter.Format == "json" {
		listings := make([]RunListing, len(runs))
		for i, r := range runs {
			listings[i] = toRunListing(r)
		}
		return formatter.Success(listings)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPASSED\tFAILED\tSKIPPED\tTOTAL\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, formatTime(r.StartedAt), r.Passed, r.Failed, r.Skipped, r.Total, r.Duration)
	}
	return tw.Flush()
}

func showRun(ctx context.Context, st *store.Store, formatter *OutputFormatter, runID string) error {
	run, cases, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.Fail(WrapExitError(ExitCommandError, "unknown run", err).WithReason(ErrCodeRunNotFound))
	}
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to read run", err).WithReason(ErrCodeDatabase))
	}

	if formatter.Format == "json" {
		return formatter.Success(RunDetail{Run: toRunListing(*run), Cases: toCaseListings(cases)})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  started:  %s\n", formatTime(run.StartedAt))
	fmt.Fprintf(w, "  manifest: %s (%s)\n", run.ManifestPath, shortDigest(run.ManifestDigest))
	fmt.Fprintf(w, "  tool:     %s\n", run.ToolPath)
	fmt.Fprintf(w, "  result:   %d passed, %d failed, %d skipped, %d total\n", run.Passed, run.Failed, run.Skipped, run.Total)
	fmt.Fprintln(w)
	return writeCaseTable(w, cases)
}

func showCase(ctx context.Context, st *store.Store, formatter *OutputFormatter, desc string, limit int) error {
	records, err := st.CaseHistory(ctx, desc, limit)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "failed to read case history", err).WithReason(ErrCodeDatabase))
	}

	if formatter.Format == "json" {
		return formatter.Success(toCaseListings(records))
	}
	if len(records) == 0 {
		fmt.Fprintf(formatter.Writer, "No results recorded for %q.\n", desc)
		return nil
	}
	return writeCaseTable(formatter.Writer, records)
}

func writeCaseTable(w io.Writer, cases []store.CaseRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDESC\tSTATUS\tKIND\tDURATION\tSTDOUT")
	for _, c := range cases {
		kind := c.ErrorKind
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.Index, c.Description, c.Status, kind, c.Duration, shortDigest(c.StdoutDigest))
	}
	return tw.Flush()
}

func toRunListing(r store.Run) RunListing {
	return RunListing{
		ID:             r.ID,
		StartedAt:      formatTime(r.StartedAt),
		DurationMS:     r.Duration.Milliseconds(),
		Manifest:       r.ManifestPath,
		ManifestDigest: r.ManifestDigest,
		Tool:           r.ToolPath,
		FailFast:       r.FailFast,
		Passed:         r.Passed,
		Failed:         r.Failed,
		Skipped:        r.Skipped,
		Total:          r.Total,
	}
}

func toCaseListings(cases []store.CaseRecord) []CaseRecordListing {
	out := make([]CaseRecordListing, len(cases))
	for i, c := range cases {
		out[i] = CaseRecordListing{
			Index:        c.Index,
			Description:  c.Description,
			Status:       c.Status,
			Kind:         c.ErrorKind,
			Message:      c.Message,
			DurationMS:   c.Duration.Milliseconds(),
			StdoutDigest: c.StdoutDigest,
		}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// shortDigest trims a hex digest for tables; "-" when empty.
func shortDigest(d string) string {
	switch {
	case d == "":
		return "-"
	case len(d) > 12:
		return d[:12]
	default:
		return d
	}
}
