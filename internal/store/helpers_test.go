package store

import (
	"path/filepath"
	"testing"
	"time"
)

var baseTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, startedAt time.Time) Run {
	return Run{
		ID:             id,
		StartedAt:      startedAt,
		Duration:       1500 * time.Millisecond,
		ManifestPath:   "test/data/all-tests.json",
		ManifestDigest: "b3:abc",
		ToolPath:       "./jup",
		Passed:         1,
		Failed:         1,
		Total:          2,
	}
}

func sampleCases() []CaseRecord {
	return []CaseRecord{
		{Index: 0, Description: "identity", Status: "ok", Duration: 20 * time.Millisecond, StdoutDigest: "d0"},
		{Index: 1, Description: "edit", Status: "failed", ErrorKind: "mismatch", Message: "unmatched stdout output", Duration: 30 * time.Millisecond, StdoutDigest: "d1"},
	}
}
