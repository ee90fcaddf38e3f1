package cli

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fixturerun/internal/testutil"
	"github.com/roach88/fixturerun/internal/tool"
)

// fakeTool echoes stdin unless fn is set, and counts launches.
type fakeTool struct {
	launches atomic.Int32
	fn       func(stdin []byte, args []string) *tool.Outcome
}

func (f *fakeTool) Execute(_ context.Context, stdin []byte, args []string) (*tool.Outcome, error) {
	f.launches.Add(1)
	if f.fn != nil {
		return f.fn(stdin, args), nil
	}
	return &tool.Outcome{Stdout: append([]byte(nil), stdin...)}, nil
}

// suiteTree is a fixture root with one passing and one mismatching case.
const suiteTree = `
-- test/data/all-tests.json --
[
  {"desc": "identity", "in": "a.json", "out": "a.json"},
  {"desc": "trailing newline", "in": "b.json", "out": "b-expected.json"}
]
-- test/data/a.json --
{"a": 1}
-- test/data/b.json --
{"b": 1}
-- test/data/b-expected.json --
{"b": 1}

`

// passingTree is a fixture root where every case passes against echo.
const passingTree = `
-- test/data/all-tests.json --
[
  {"desc": "identity", "in": "a.json", "out": "a.json"},
  {"desc": "with args", "in": "b.json", "cmd": "b.cmd", "out": "b.json"}
]
-- test/data/a.json --
{"a": 1}
-- test/data/b.json --
[1, 2]
-- test/data/b.cmd --
set .a 2
`

func writeRoot(t *testing.T, archive string) string {
	t.Helper()
	return testutil.WriteTree(t, t.TempDir(), archive)
}

// execRun runs the run command with a fake tool and deterministic clock.
func execRun(t *testing.T, format string, ft *fakeTool, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: format},
		Tool:        ft,
		Now:         testutil.NewStepClock(time.Millisecond).Now,
		NewID:       testutil.FixedID("run-1"),
	})
	return execCommand(cmd, args...)
}

func execCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
