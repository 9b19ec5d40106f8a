package session

import (
	"time"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/progress"
)

// SessionActivity is one activity pass within a session.
type SessionActivity struct {
	Activity     catalog.Activity
	Start        time.Time
	End          time.Time
	Duration     time.Duration
	Completed    bool
	Interactions []events.Interaction

	// Pass is the engine decision the interactions were sequenced from.
	Pass progress.Pass

	// Degraded is set when the trace fell back to a single event.
	Degraded bool
}

// LearningSession is one sitting of a learner. TotalDuration is the
// session's time budget; activities never exceed it.
type LearningSession struct {
	ID            string
	LearnerID     string
	Week          int
	Start         time.Time
	End           time.Time
	TotalDuration time.Duration
	Activities    []SessionActivity
}

// ActiveDuration sums the durations of the session's activities.
func (s LearningSession) ActiveDuration() time.Duration {
	var d time.Duration
	for _, a := range s.Activities {
		d += a.Duration
	}
	return d
}

// Interactions returns the number of events across all activities.
func (s LearningSession) Interactions() int {
	n := 0
	for _, a := range s.Activities {
		n += len(a.Interactions)
	}
	return n
}
