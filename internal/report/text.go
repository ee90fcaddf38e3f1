// Package report renders harness results for people and machines.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/term"

	"github.com/roach88/fixturerun/internal/harness"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Text writes the line-oriented console report. Progress and passing cases
// go to Out; failure diagnostics go to Err.
type Text struct {
	Out   io.Writer
	Err   io.Writer
	Color bool

	// Diff adds a line diff below the EXPECTED/ACTUAL dump on mismatch.
	Diff bool
}

// NewText creates a text reporter. Colour is enabled when out is a terminal.
func NewText(out, errOut io.Writer) *Text {
	return &Text{
		Out:   out,
		Err:   errOut,
		Color: IsTerminal(out),
		Diff:  true,
	}
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Start implements harness.Reporter.
func (t *Text) Start(total int) {
	fmt.Fprintf(t.Out, "Running %d tests:\n", total)
}

// CaseDone implements harness.Reporter.
func (t *Text) CaseDone(res *harness.CaseResult) {
	prefix := res.Case.Description + ": "
	switch res.Status {
	case harness.StatusOK:
		suffix := ""
		if res.Updated {
			suffix = " (expected output updated)"
		}
		fmt.Fprintf(t.Out, "%s%s%s\n", prefix, t.paint(ansiGreen, "ok"), suffix)
	case harness.StatusFailed:
		t.diagnose(res.Err)
		fmt.Fprintf(t.Err, "%s%s\n", prefix, t.paint(ansiRed, "failed"))
	}
}

// Finish implements harness.Reporter.
func (t *Text) Finish(rep *harness.Report) {
	fmt.Fprintln(t.Out)
	summary := fmt.Sprintf("Test Summary: %d passed, %d failed", rep.Passed, rep.Failed)
	if rep.Skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", rep.Skipped)
	}
	fmt.Fprintf(t.Out, "%s, %d total\n", summary, rep.Total())
	if rep.Aborted {
		fmt.Fprintln(t.Out, "Run stopped at the first failure (--fail-fast).")
	}
}

func (t *Text) diagnose(err error) {
	var (
		sub      *harness.SubprocessError
		stderr   *harness.UnexpectedStderrError
		mismatch *harness.OutputMismatchError
	)
	switch {
	case errors.As(err, &mismatch):
		fmt.Fprintln(t.Err, "Unmatched stdout output")
		fmt.Fprintf(t.Err, "EXPECTED:%s\n", mismatch.Expected)
		fmt.Fprintf(t.Err, "ACTUAL:%s\n", mismatch.Actual)
		if t.Diff {
			fmt.Fprintf(t.Err, "DIFF (-expected +actual):\n%s", Diff(mismatch.Expected, mismatch.Actual))
		}
	case errors.As(err, &stderr):
		fmt.Fprintf(t.Err, "Unexpected stderr output: %s\n", stderr.Stderr)
	case errors.As(err, &sub):
		fmt.Fprintln(t.Err, sub.Error())
		if len(sub.Stderr) > 0 {
			fmt.Fprintf(t.Err, "stderr: %s\n", strings.TrimRight(string(sub.Stderr), "\n"))
		}
	default:
		fmt.Fprintln(t.Err, err)
	}
}

func (t *Text) paint(color, s string) string {
	if !t.Color {
		return s
	}
	return color + s + ansiReset
}

// Diff renders a line diff between expected and actual output. Whitespace
// differences, including a missing trailing newline, are visible.
func Diff(expected, actual []byte) string {
	return cmp.Diff(string(expected), string(actual))
}
