package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/fixturerun/internal/manifest"
	"github.com/roach88/fixturerun/internal/tool"
)

// Options control a run.
type Options struct {
	// FailFast stops the run at the first failed case.
	FailFast bool

	// Jobs is the number of cases executed concurrently. Values below one
	// mean one.
	Jobs int

	// Timeout bounds each tool invocation. Zero means no limit.
	Timeout time.Duration

	// ArgMode controls how argument fixtures are split.
	ArgMode tool.ArgMode

	// Update rewrites expected-output fixtures that do not match instead
	// of failing the case.
	Update bool

	// Now and NewID override the clock and run id source.
	Now   func() time.Time
	NewID func() string
}

// Harness runs cases against a tool.
type Harness struct {
	tool     tool.Tool
	fixtures *manifest.Fixtures
	opts     Options
	reporter Reporter
	logger   *slog.Logger
}

// New creates a harness. A nil reporter discards progress.
func New(t tool.Tool, fixtures *manifest.Fixtures, opts Options, reporter Reporter) *Harness {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.ArgMode == "" {
		opts.ArgMode = tool.ArgModeShell
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newRunID
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Harness{
		tool:     t,
		fixtures: fixtures,
		opts:     opts,
		reporter: reporter,
		logger:   slog.Default(),
	}
}

// WithLogger replaces the harness logger.
func (h *Harness) WithLogger(logger *slog.Logger) *Harness {
	h.logger = logger
	return h
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// errAbort cancels the worker group when a fail-fast run sees a failure.
var errAbort = errors.New("run aborted after failure")

// Run executes cases and returns the report. Case failures are reported in
// the Report, not as an error; the error is non-nil only when ctx ends the
// run early.
func (h *Harness) Run(ctx context.Context, cases []manifest.Case) (*Report, error) {
	rep := &Report{
		RunID:     h.opts.NewID(),
		StartedAt: h.opts.Now(),
		Results:   make([]*CaseResult, len(cases)),
	}
	for i, c := range cases {
		rep.Results[i] = &CaseResult{Case: c, Status: StatusPending}
	}

	h.logger.Debug("run starting",
		"run_id", rep.RunID,
		"cases", len(cases),
		"jobs", h.opts.Jobs,
		"fail_fast", h.opts.FailFast)
	h.reporter.Start(len(cases))

	seq := newSequencer(rep.Results, h.reporter.CaseDone)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.opts.Jobs)

	var abortOnce sync.Once
	for i := range cases {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := h.RunCase(gctx, cases[i])
			if res.Status == StatusFailed && gctx.Err() != nil && isCancellation(res.Err) {
				res.Status = StatusSkipped
			}
			seq.complete(i, res)

			if res.Status == StatusFailed && h.opts.FailFast {
				abortOnce.Do(func() { rep.Aborted = true })
				return errAbort
			}
			return nil
		})
	}

	// Workers only ever return errAbort.
	_ = g.Wait()
	seq.drain(func(res *CaseResult) {
		res.Status = StatusSkipped
		if res.Err == nil {
			if rep.Aborted {
				res.Err = errAbort
			} else {
				res.Err = context.Cause(ctx)
			}
		}
	})

	rep.Duration = h.opts.Now().Sub(rep.StartedAt)
	rep.tally()
	h.reporter.Finish(rep)

	h.logger.Debug("run finished",
		"run_id", rep.RunID,
		"passed", rep.Passed,
		"failed", rep.Failed,
		"skipped", rep.Skipped)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return rep, fmt.Errorf("run interrupted: %w", ctxErr)
	}
	return rep, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// RunCase executes one case. It never returns nil.
func (h *Harness) RunCase(ctx context.Context, c manifest.Case) *CaseResult {
	start := h.opts.Now()
	res := &CaseResult{Case: c, Status: StatusRunning}
	finish := func(err error) *CaseResult {
		res.Duration = h.opts.Now().Sub(start)
		if err != nil {
			res.Status = StatusFailed
			res.Err = err
			h.logger.Debug("case failed", "index", c.Index, "desc", c.Description, "kind", ErrorKind(err), "error", err)
			return res
		}
		res.Status = StatusOK
		h.logger.Debug("case passed", "index", c.Index, "desc", c.Description, "duration", res.Duration)
		return res
	}

	if c.Args != "" {
		raw, err := h.fixtures.Read(c.Args)
		if err != nil {
			return finish(&ConfigurationError{Op: "read args fixture", Err: err})
		}
		args, err := tool.ParseArgs(string(raw), h.opts.ArgMode)
		if err != nil {
			return finish(&ConfigurationError{Op: "parse args fixture", Err: err})
		}
		res.Args = args
	}

	stdin, err := h.fixtures.Read(c.Input)
	if err != nil {
		return finish(&ConfigurationError{Op: "read input fixture", Err: err})
	}

	runCtx := ctx
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	h.logger.Debug("launching tool", "index", c.Index, "desc", c.Description, "args", res.Args)
	outcome, err := h.tool.Execute(runCtx, stdin, res.Args)
	if outcome != nil {
		res.Stdout = outcome.Stdout
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", h.opts.Timeout, err)
		}
		sub := &SubprocessError{ExitCode: -1, Err: err}
		if outcome != nil {
			sub.Stderr = outcome.Stderr
		}
		return finish(sub)
	}

	if failure := h.check(c, outcome, res); failure != nil {
		return finish(failure)
	}
	return finish(nil)
}
