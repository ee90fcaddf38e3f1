package report

import (
	"errors"

	"github.com/roach88/fixturerun/internal/harness"
)

// Summary is the machine-readable form of a run.
type Summary struct {
	RunID      string        `json:"run_id"`
	StartedAt  string        `json:"started_at"`
	DurationMS int64         `json:"duration_ms"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Total      int           `json:"total"`
	Aborted    bool          `json:"aborted,omitempty"`
	Cases      []CaseSummary `json:"cases"`
}

// CaseSummary is one case in a Summary.
type CaseSummary struct {
	Index       int      `json:"index"`
	Description string   `json:"desc"`
	Status      string   `json:"status"`
	Kind        string   `json:"kind,omitempty"`
	Message     string   `json:"message,omitempty"`
	Args        []string `json:"args,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
	Updated     bool     `json:"updated,omitempty"`

	// Expected and Actual are set for output mismatches.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// Summarize converts a report into its JSON form.
func Summarize(rep *harness.Report) Summary {
	s := Summary{
		RunID:      rep.RunID,
		StartedAt:  rep.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationMS: rep.Duration.Milliseconds(),
		Passed:     rep.Passed,
		Failed:     rep.Failed,
		Skipped:    rep.Skipped,
		Total:      rep.Total(),
		Aborted:    rep.Aborted,
		Cases:      make([]CaseSummary, 0, len(rep.Results)),
	}
	for _, res := range rep.Results {
		s.Cases = append(s.Cases, summarizeCase(res))
	}
	return s
}

func summarizeCase(res *harness.CaseResult) CaseSummary {
	cs := CaseSummary{
		Index:       res.Case.Index,
		Description: res.Case.Description,
		Status:      res.Status.String(),
		Args:        res.Args,
		DurationMS:  res.Duration.Milliseconds(),
		Updated:     res.Updated,
	}
	if res.Err != nil {
		cs.Message = res.Err.Error()
		if res.Status == harness.StatusFailed {
			cs.Kind = harness.ErrorKind(res.Err)
		} else {
			cs.Kind = harness.KindCancelled
		}
	}
	var mismatch *harness.OutputMismatchError
	if errors.As(res.Err, &mismatch) {
		cs.Expected = string(mismatch.Expected)
		cs.Actual = string(mismatch.Actual)
	}
	return cs
}
