package harness

import (
	"bytes"

	"github.com/roach88/fixturerun/internal/manifest"
	"github.com/roach88/fixturerun/internal/tool"
)

// check applies the ordered outcome checks: exit status, then stderr, then
// stdout. It returns nil when the case passes.
func (h *Harness) check(c manifest.Case, outcome *tool.Outcome, res *CaseResult) error {
	if outcome.ExitCode != 0 {
		return &SubprocessError{ExitCode: outcome.ExitCode, Stderr: outcome.Stderr}
	}

	if len(outcome.Stderr) > 0 {
		return &UnexpectedStderrError{Stderr: outcome.Stderr}
	}

	expected, err := h.fixtures.Read(c.Output)
	if err != nil {
		return &ConfigurationError{Op: "read expected output fixture", Err: err}
	}

	if bytes.Equal(expected, outcome.Stdout) {
		return nil
	}

	if h.opts.Update {
		if err := h.fixtures.Write(c.Output, outcome.Stdout); err != nil {
			return &ConfigurationError{Op: "update expected output fixture", Err: err}
		}
		res.Updated = true
		h.logger.Info("updated expected output", "desc", c.Description, "fixture", c.Output)
		return nil
	}

	return &OutputMismatchError{Expected: expected, Actual: outcome.Stdout}
}
