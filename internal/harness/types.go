package harness

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	"github.com/roach88/fixturerun/internal/manifest"
)

// Status is a case's position in PENDING → RUNNING → {OK, FAILED}.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusOK
	StatusFailed

	// StatusSkipped marks a case that never finished because a fail-fast
	// run was aborted or the run's context was cancelled.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Case   manifest.Case
	Status Status

	// Err explains a failed or skipped case. Nil when Status is StatusOK.
	Err error

	// Args are the arguments the tool was invoked with.
	Args []string

	// Stdout is what the tool wrote, kept for history digests.
	Stdout []byte

	Duration time.Duration

	// Updated is set when the expected-output fixture was rewritten.
	Updated bool
}

// StdoutDigest returns the BLAKE3-256 hex digest of Stdout, or "" when the
// tool never ran.
func (r *CaseResult) StdoutDigest() string {
	if r.Stdout == nil {
		return ""
	}
	sum := blake3.Sum256(r.Stdout)
	return hex.EncodeToString(sum[:])
}

// Report is the outcome of a run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	// Results holds one entry per case, in manifest order.
	Results []*CaseResult

	Passed  int
	Failed  int
	Skipped int

	// Aborted is set when fail-fast stopped the run early.
	Aborted bool
}

// Total is the number of cases the run was given.
func (r *Report) Total() int {
	return len(r.Results)
}

// Pass reports whether every case finished OK.
func (r *Report) Pass() bool {
	return r.Failed == 0 && r.Skipped == 0
}

// Failures returns the failed cases in manifest order.
func (r *Report) Failures() []*CaseResult {
	var out []*CaseResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) tally() {
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			r.Passed++
		case StatusFailed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
}

// Reporter receives run progress. CaseDone is called once per case in
// manifest order; calls are never concurrent.
type Reporter interface {
	Start(total int)
	CaseDone(res *CaseResult)
	Finish(rep *Report)
}

type nopReporter struct{}

func (nopReporter) Start(int) {}
func (nopReporter) CaseDone(*CaseResult) {}
func (nopReporter) Finish(*Report) {}
