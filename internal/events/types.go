package events

import "time"

// Kind is the semantic name of a learning event. Kinds match the verb
// vocabulary whitelist.
type Kind string

const (
	KindPrescribed  Kind = "prescribed"
	KindScored      Kind = "scored"
	KindInitialized Kind = "initialized"
	KindExited      Kind = "exited"
	KindCompleted   Kind = "completed"
	KindAchieved    Kind = "achieved"
	KindFailed      Kind = "failed"
	KindPassed      Kind = "passed"
	KindRated       Kind = "rated"
	KindSearched    Kind = "searched"
	KindProgressed  Kind = "progressed"
	KindLaunched    Kind = "launched"
)

// AllKinds returns every event kind.
func AllKinds() []Kind {
	return []Kind{
		KindPrescribed, KindScored, KindInitialized, KindExited, KindCompleted, KindAchieved,
		KindFailed, KindPassed, KindRated, KindSearched, KindProgressed, KindLaunched,
	}
}

// Score is a scored result. Scaled is (Raw-Min)/(Max-Min).
type Score struct {
	Raw    int
	Min    int
	Max    int
	Scaled float64
}

// NewScore builds a score with its scaled value.
func NewScore(raw, lo, hi int) *Score {
	s := &Score{Raw: raw, Min: lo, Max: hi}
	if hi > lo {
		s.Scaled = float64(raw-lo) / float64(hi-lo)
	}
	return s
}

// Result carries the optional outcome fields of an interaction.
type Result struct {
	Success    *bool
	Completion *bool
	Progress   *float64
	Duration   time.Duration
	Score      *Score
}

// Interaction is one learning event in an activity trace.
type Interaction struct {
	Kind      Kind
	Timestamp time.Time
	Result    *Result
}

// Last returns the kind of the final event in trace, or "" for an empty trace.
func Last(trace []Interaction) Kind {
	if len(trace) == 0 {
		return ""
	}
	return trace[len(trace)-1].Kind
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }
