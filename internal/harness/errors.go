package harness

import (
	"errors"
	"fmt"
)

// Error kinds as they appear in reports and run history.
const (
	KindConfiguration = "configuration"
	KindSubprocess    = "subprocess"
	KindStderr        = "stderr"
	KindMismatch      = "mismatch"
	KindCancelled     = "cancelled"
)

// ConfigurationError means the run's inputs are unusable: missing fixture
// root, unreadable manifest or fixture, malformed manifest or arguments.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// SubprocessError means the tool could not be launched or exited non-zero.
type SubprocessError struct {
	// ExitCode is -1 when the process never produced a status.
	ExitCode int

	// Stderr is whatever the tool wrote before failing.
	Stderr []byte

	// Err is the launch or wait error, nil for a plain non-zero exit.
	Err error
}

func (e *SubprocessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool failed: %v", e.Err)
	}
	return fmt.Sprintf("tool exited with status %d", e.ExitCode)
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// UnexpectedStderrError means the tool wrote to stderr. It applies even when
// stdout matched.
type UnexpectedStderrError struct {
	Stderr []byte
}

func (e *UnexpectedStderrError) Error() string {
	return fmt.Sprintf("unexpected stderr output: %s", e.Stderr)
}

// OutputMismatchError means stdout differed from the expected fixture.
type OutputMismatchError struct {
	Expected []byte
	Actual   []byte
}

func (e *OutputMismatchError) Error() string {
	return fmt.Sprintf("unmatched stdout output: expected %d bytes, got %d bytes", len(e.Expected), len(e.Actual))
}

// ErrorKind classifies err into one of the Kind constants. It returns ""
// for nil and KindSubprocess for unrecognised errors.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var (
		cfgErr      *ConfigurationError
		stderrErr   *UnexpectedStderrError
		mismatchErr *OutputMismatchError
	)
	switch {
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &stderrErr):
		return KindStderr
	case errors.As(err, &mismatchErr):
		return KindMismatch
	default:
		return KindSubprocess
	}
}
