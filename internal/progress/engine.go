package progress

import (
	"math"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/rng"
)

// minLearningSpeed keeps adjusted durations finite for learners whose
// duration metric rounds to zero.
const minLearningSpeed = 0.05

// Pass is the outcome of one scheduling turn on one activity.
type Pass struct {
	Activity catalog.Activity

	// Minutes is the time spent in this pass.
	Minutes int

	// AdjustedDuration is the activity's estimated duration scaled by the
	// learner's speed.
	AdjustedDuration int

	// FirstAttempt is true when the activity had never been initialized.
	FirstAttempt bool

	ProgressBefore float64
	Progress       float64

	// Scored is set when progress crossed the threshold and an attempt
	// was scored. Attempt, Score and Passed are only meaningful then.
	Scored  bool
	Attempt int
	Score   int
	Passed  bool

	Completed bool

	// Rating is the 1-5 rating given on a passed completion, 0 otherwise.
	Rating int
}

// Engine advances learners through course activities one pass at a time.
type Engine struct {
	cfg   Config
	store *Store
	rng   rng.Source
}

// NewEngine creates an engine over an explicitly owned progress store.
func NewEngine(cfg Config, store *Store, r rng.Source) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Engine{cfg: cfg, store: store, rng: r}
}

// Store returns the engine's progress store.
func (e *Engine) Store() *Store {
	return e.store
}

// Eligible returns the activities the learner may still start: not
// completed and with attempts left.
func (e *Engine) Eligible(learnerID string, activities []catalog.Activity) []catalog.Activity {
	var out []catalog.Activity
	for _, a := range activities {
		ap, ok := e.store.Peek(learnerID, a.ID)
		if ok && (ap.Completed || ap.Attempts >= e.cfg.MaxAttempts) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Select returns the learner's current activity if one is in progress,
// otherwise a probability-weighted draw from the eligible activities.
func (e *Engine) Select(learnerID string, activities []catalog.Activity) (catalog.Activity, bool) {
	if id, ok := e.store.Current(learnerID); ok {
		for _, a := range activities {
			if a.ID != id {
				continue
			}
			if ap, ok := e.store.Peek(learnerID, id); !ok || !ap.Completed {
				return a, true
			}
		}
		e.store.ClearCurrent(learnerID)
	}

	eligible := e.Eligible(learnerID, activities)
	if len(eligible) == 0 {
		return catalog.Activity{}, false
	}
	total := TotalProbability(eligible)
	if total <= 0 {
		return eligible[e.rng.IntN(len(eligible))], true
	}
	return SelectWeighted(eligible, e.rng.Float64()*total)
}

// TotalProbability sums the selection weights.
func TotalProbability(activities []catalog.Activity) float64 {
	var total float64
	for _, a := range activities {
		total += a.Probability
	}
	return total
}

// SelectWeighted walks activities accumulating probability and returns the
// first whose cumulative weight reaches draw. draw is expected in
// [0, TotalProbability).
func SelectWeighted(activities []catalog.Activity, draw float64) (catalog.Activity, bool) {
	var cum float64
	var last catalog.Activity
	found := false
	for _, a := range activities {
		if a.Probability <= 0 {
			continue
		}
		cum += a.Probability
		last, found = a, true
		if cum >= draw {
			return a, true
		}
	}
	// Rounding can leave draw a hair above the final sum.
	return last, found
}

// Step runs one pass for the learner with the remaining session budget in
// minutes. It returns false when no eligible activity remains or the
// budget is too small for a pass; nothing is recorded in that case.
func (e *Engine) Step(learner profile.LearnerProfile, phase profile.Phase, activities []catalog.Activity, remaining int) (Pass, bool) {
	if remaining < e.cfg.MinSessionTime {
		return Pass{}, false
	}
	act, ok := e.Select(learner.ID, activities)
	if !ok {
		return Pass{}, false
	}

	m := learner.Metrics.At(phase)
	speed := math.Max(m.Duration, minLearningSpeed)
	adjusted := max(int(math.Round(float64(act.EstimatedDuration)/speed)), 1)

	// Passes shorter than MinSessionTime end the session unrecorded.
	spent := min(adjusted, remaining)
	if spent < e.cfg.MinSessionTime {
		return Pass{}, false
	}

	ap := e.store.Get(learner.ID, act.ID)
	pass := Pass{
		Activity:         act,
		Minutes:          spent,
		AdjustedDuration: adjusted,
		FirstAttempt:     !ap.Initialized,
		ProgressBefore:   ap.CurrentProgress,
	}

	increment := math.Min(1-ap.CurrentProgress, float64(spent)/float64(adjusted)*speed)
	ap.CurrentProgress = profile.Clamp(profile.Round(ap.CurrentProgress+increment, 3), 0, 1)
	pass.Progress = ap.CurrentProgress

	if ap.CurrentProgress < e.cfg.ProgressThreshold {
		e.store.SetCurrent(learner.ID, act.ID)
		return pass, true
	}

	ap.Attempts++
	pass.Scored = true
	pass.Attempt = ap.Attempts
	pass.Score = Score(ScoreInput{
		ScoresMetric: m.Scores,
		Consistency:  m.Consistency,
		Difficulty:   act.Difficulty,
		Attempts:     ap.Attempts,
	}, e.rng)
	pass.Passed = pass.Score >= e.cfg.PassingScore
	pass.Completed = pass.Passed || ap.Attempts >= e.cfg.MaxAttempts

	if pass.Completed {
		ap.Completed = true
		e.store.ClearCurrent(learner.ID)
		if pass.Passed {
			pass.Rating = Rating(act.Rating, m.Consistency, e.rng)
		}
		return pass, true
	}

	// A failed attempt starts a new attempt cycle on the same activity.
	ap.CurrentProgress = 0
	e.store.SetCurrent(learner.ID, act.ID)
	return pass, true
}
