package events

import (
	"fmt"
	"time"

	"github.com/abhisek/learnsim/internal/progress"
)

// progressedAfter is the pass length above which a progressed event is
// emitted.
const progressedAfter = 5 * time.Minute

// slots divides a pass into evenly spaced event timestamps.
const slots = 8

// GenerationError reports a pass that cannot be turned into a trace.
type GenerationError struct {
	ActivityID string
	Reason     string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate events for activity %q: %s", e.ActivityID, e.Reason)
}

// Warner receives degraded-trace warnings.
type Warner interface {
	Warn(msg string, keysAndValues ...interface{})
}

// Sequence turns one progress pass starting at start into an ordered
// event trace:
//
//	[initialized] launched [progressed] scored passed completed rated
//	[initialized] launched [progressed] scored failed exited
//	[initialized] launched [progressed] exited
//
// initialized only appears on an activity's first attempt and progressed
// only for passes longer than five minutes. Any trace not ending in rated
// ends in exited.
func Sequence(start time.Time, p progress.Pass) ([]Interaction, error) {
	if err := validate(start, p); err != nil {
		return nil, err
	}

	duration := time.Duration(p.Minutes) * time.Minute
	gap := duration / slots

	var trace []Interaction
	add := func(kind Kind, result *Result) {
		trace = append(trace, Interaction{
			Kind:      kind,
			Timestamp: start.Add(time.Duration(len(trace)) * gap),
			Result:    result,
		})
	}

	if p.FirstAttempt {
		add(KindInitialized, nil)
	}
	add(KindLaunched, nil)
	if duration > progressedAfter {
		add(KindProgressed, &Result{Completion: boolPtr(false), Progress: floatPtr(p.Progress)})
	}

	if p.Scored {
		score := NewScore(p.Score, 0, 100)
		add(KindScored, &Result{Score: score, Duration: duration})
		if p.Passed {
			add(KindPassed, &Result{Success: boolPtr(true), Score: score})
			if p.Completed {
				add(KindCompleted, &Result{
					Success:    boolPtr(true),
					Completion: boolPtr(true),
					Progress:   floatPtr(p.Progress),
					Duration:   duration,
				})
				if p.Rating > 0 {
					add(KindRated, &Result{Score: NewScore(p.Rating, 1, 5)})
				}
			}
		} else {
			add(KindFailed, &Result{Success: boolPtr(false), Completion: boolPtr(p.Completed), Score: score})
		}
	}

	if Last(trace) != KindRated {
		add(KindExited, &Result{Progress: floatPtr(p.Progress), Duration: duration})
	}
	return trace, nil
}

// Degraded is the minimal trace emitted when a pass cannot be sequenced.
func Degraded(start time.Time) []Interaction {
	return []Interaction{{Kind: KindInitialized, Timestamp: start}}
}

// SequenceOrDegrade sequences p, falling back to the degraded trace on
// error. The error is logged, never returned. The boolean reports whether
// the fallback was used.
func SequenceOrDegrade(start time.Time, p progress.Pass, log Warner) ([]Interaction, bool) {
	trace, err := Sequence(start, p)
	if err == nil {
		return trace, false
	}
	if log != nil {
		log.Warn("event sequence degraded", "activity_id", p.Activity.ID, "error", err)
	}
	return Degraded(start), true
}

func validate(start time.Time, p progress.Pass) error {
	fail := func(format string, args ...any) error {
		return &GenerationError{ActivityID: p.Activity.ID, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case start.IsZero():
		return fail("missing start time")
	case p.Minutes <= 0:
		return fail("non-positive duration %d", p.Minutes)
	case p.Progress < 0 || p.Progress > 1:
		return fail("progress %.3f outside [0,1]", p.Progress)
	case !p.Scored && (p.Passed || p.Completed):
		return fail("outcome without a scored attempt")
	case p.Scored && (p.Score < 0 || p.Score > 100):
		return fail("score %d outside [0,100]", p.Score)
	case p.Rating < 0 || p.Rating > 5:
		return fail("rating %d outside [0,5]", p.Rating)
	}
	return nil
}
