package store

import "time"

// Run is one recorded harness run.
type Run struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	ManifestPath   string
	ManifestDigest string
	ToolPath       string
	FailFast       bool
	Passed         int
	Failed         int
	Skipped        int
	Total          int
}

// CaseRecord is one case within a recorded run.
type CaseRecord struct {
	Index        int
	Description  string
	Status       string
	ErrorKind    string
	Message      string
	Duration     time.Duration
	StdoutDigest string
}
