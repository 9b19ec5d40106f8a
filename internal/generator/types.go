package generator

import (
	"time"

	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/progress"
	"github.com/abhisek/learnsim/internal/session"
	"github.com/abhisek/learnsim/internal/xapi"
)

// Options controls one simulation run.
type Options struct {
	Seed     uint64
	Learners int
	Weeks    int
	Start    time.Time

	Profile  profile.Config
	Progress progress.Config
	Session  session.Config
	XAPI     xapi.Config

	BatchSize int

	// Validate checks every statement against the xAPI schema before it
	// is returned.
	Validate bool
}

// DefaultOptions returns the standard run settings.
func DefaultOptions() Options {
	return Options{
		Seed:      1,
		Learners:  100,
		Weeks:     12,
		Start:     time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Profile:   profile.DefaultConfig(),
		Progress:  progress.DefaultConfig(),
		Session:   session.DefaultConfig(),
		XAPI:      xapi.DefaultConfig(),
		BatchSize: xapi.DefaultBatchSize,
		Validate:  true,
	}
}

// Pass outcomes used for reporting.
const (
	OutcomePassed    = "passed"
	OutcomeFailed    = "failed"
	OutcomeExhausted = "exhausted"
	OutcomePartial   = "partial"
)

// Outcome classifies a pass.
func Outcome(p progress.Pass) string {
	switch {
	case p.Passed:
		return OutcomePassed
	case p.Completed:
		return OutcomeExhausted
	case p.Scored:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

// Result is the output of a run.
type Result struct {
	Learners   []profile.LearnerProfile
	Sessions   []session.LearningSession
	Statements []xapi.Statement

	// Progress is the final per-learner activity state.
	Progress *progress.Store

	Outcomes map[string]int
	Degraded int
	Elapsed  time.Duration
}

// Distribution reports the persona mix of the run's learners.
func (r *Result) Distribution() profile.Report {
	return profile.Distribution(r.Learners)
}
