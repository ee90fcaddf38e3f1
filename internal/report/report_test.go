package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fixturerun/internal/harness"
	"github.com/roach88/fixturerun/internal/manifest"
	"github.com/roach88/fixturerun/internal/testutil"
)

func sampleReport() *harness.Report {
	c := func(i int, desc string) manifest.Case {
		return manifest.Case{Index: i, Description: desc, Input: desc + ".in", Output: desc + ".out"}
	}
	results := []*harness.CaseResult{
		{Case: c(0, "identity"), Status: harness.StatusOK},
		{Case: c(1, "edit"), Status: harness.StatusFailed, Args: []string{"set", ".a", "2"}, Err: &harness.OutputMismatchError{
			Expected: []byte("{\"a\": 2}\n"),
			Actual:   []byte("{\"a\": 1}\n"),
		}},
		{Case: c(2, "warns"), Status: harness.StatusFailed, Err: &harness.UnexpectedStderrError{Stderr: []byte("warn")}},
		{Case: c(3, "exits"), Status: harness.StatusFailed, Err: &harness.SubprocessError{ExitCode: 2, Stderr: []byte("boom\n")}},
		{Case: c(4, "updated"), Status: harness.StatusOK, Updated: true},
		{Case: c(5, "later"), Status: harness.StatusSkipped, Err: errors.New("run aborted after failure")},
	}
	for _, r := range results {
		if r.Status != harness.StatusSkipped {
			r.Duration = time.Millisecond
		}
	}
	return &harness.Report{
		RunID:     "run-1",
		StartedAt: testutil.Epoch,
		Duration:  6 * time.Millisecond,
		Results:   results,
		Passed:    2,
		Failed:    3,
		Skipped:   1,
		Aborted:   true,
	}
}

func render(t *Text, rep *harness.Report) {
	t.Start(rep.Total())
	for _, res := range rep.Results {
		t.CaseDone(res)
	}
	t.Finish(rep)
}

func TestText_Golden(t *testing.T) {
	var buf bytes.Buffer
	// go-cmp output is deliberately unstable, so the diff is left out of
	// the golden file.
	tr := &Text{Out: &buf, Err: &buf}
	render(tr, sampleReport())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "text_report", buf.Bytes())
}

func TestSummarize_Golden(t *testing.T) {
	data, err := json.MarshalIndent(Summarize(sampleReport()), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "json_report", append(data, '\n'))
}

func TestText_StreamsSeparated(t *testing.T) {
	var out, errOut bytes.Buffer
	tr := NewText(&out, &errOut)
	assert.False(t, tr.Color, "buffers are not terminals")

	render(tr, sampleReport())

	assert.True(t, strings.HasPrefix(out.String(), "Running 6 tests:\nidentity: ok\n"))
	assert.Contains(t, out.String(), "Test Summary: 2 passed, 3 failed, 1 skipped, 6 total")
	assert.NotContains(t, out.String(), "failed\n")

	assert.Contains(t, errOut.String(), "edit: failed\n")
	assert.Contains(t, errOut.String(), "DIFF (-expected +actual):")
	assert.NotContains(t, errOut.String(), "later")
}

func TestText_Color(t *testing.T) {
	var buf bytes.Buffer
	tr := &Text{Out: &buf, Err: &buf, Color: true}
	tr.CaseDone(&harness.CaseResult{Case: manifest.Case{Description: "x"}, Status: harness.StatusOK})

	assert.Equal(t, "x: \x1b[32mok\x1b[0m\n", buf.String())
}

func TestText_PlainSummary(t *testing.T) {
	var buf bytes.Buffer
	tr := &Text{Out: &buf, Err: &buf}
	tr.Finish(&harness.Report{
		Results: []*harness.CaseResult{{Status: harness.StatusOK}},
		Passed:  1,
	})

	assert.Equal(t, "\nTest Summary: 1 passed, 0 failed, 1 total\n", buf.String())
}

func TestText_ConfigurationFailure(t *testing.T) {
	var buf bytes.Buffer
	tr := &Text{Out: &buf, Err: &buf}
	tr.CaseDone(&harness.CaseResult{
		Case:   manifest.Case{Description: "cfg"},
		Status: harness.StatusFailed,
		Err:    &harness.ConfigurationError{Op: "read input fixture", Err: errors.New("no such file")},
	})

	assert.Equal(t, "configuration error: read input fixture: no such file\ncfg: failed\n", buf.String())
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff([]byte("same\n"), []byte("same\n")))
	assert.NotEmpty(t, Diff([]byte("abc\n"), []byte("abc")))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
