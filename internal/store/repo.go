package store

import (
	"time"
)

const (
	tableLearners    = "learners"
	tableStatements  = "statements"
	tableSubmissions = "submissions"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

// VerbCount is the number of stored statements using one verb.
type VerbCount struct {
	VerbID string
	Count  int
}

// Submission statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Submission records one generation run and where its statements went.
type Submission struct {
	ID         string
	Seed       uint64
	Learners   int
	Statements int
	Target     string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
