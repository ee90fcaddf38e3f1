package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Outcome is what a single invocation produced.
type Outcome struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Tool executes the program under test once.
//
// A non-zero exit is reported through Outcome.ExitCode, not as an error.
// Execute returns an error only when the program could not be started or
// was stopped by ctx.
type Tool interface {
	Execute(ctx context.Context, stdin []byte, args []string) (*Outcome, error)
}

// ExecTool runs an executable as a subprocess.
type ExecTool struct {
	// Path is the executable. Names without a path separator are looked up
	// in PATH.
	Path string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Env replaces the environment when non-nil.
	Env []string

	// WaitDelay bounds how long to wait for output pipes after the process
	// is killed on cancellation.
	WaitDelay time.Duration
}

// NewExecTool returns an ExecTool for path.
func NewExecTool(path string) *ExecTool {
	return &ExecTool{Path: path, WaitDelay: 5 * time.Second}
}

// Execute implements Tool.
func (t *ExecTool) Execute(ctx context.Context, stdin []byte, args []string) (*Outcome, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = t.Dir
	cmd.Env = t.Env
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = t.WaitDelay

	err := cmd.Run()
	outcome := &Outcome{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		outcome.ExitCode = -1
		return outcome, fmt.Errorf("run %s: %w", t.Path, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	}
	if err != nil {
		outcome.ExitCode = -1
		return outcome, fmt.Errorf("run %s: %w", t.Path, err)
	}
	return outcome, nil
}
