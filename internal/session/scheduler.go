package session

import (
	"math"
	"time"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/logger"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/progress"
	"github.com/abhisek/learnsim/internal/rng"
)

// Scheduler decides when learners study and fills each session with
// activity passes from the progress engine.
type Scheduler struct {
	cfg    Config
	engine *progress.Engine
	rng    rng.Source
	log    *logger.Logger
}

// NewScheduler creates a Scheduler driving engine.
func NewScheduler(cfg Config, engine *progress.Engine, r rng.Source, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{cfg: cfg, engine: engine, rng: r, log: log}
}

// SessionsPerWeek returns how many sessions a learner holds in a week.
// More effort and consistency mean more sessions; low consistency makes a
// ±1 swing more likely.
func SessionsPerWeek(m profile.Resolved, cfg Config, r rng.Source) int {
	weighted := m.Effort*0.6 + m.Consistency*0.4
	n := max(1, int(math.Round(weighted*5))+1)

	if rng.Chance(r, 1-m.Consistency) {
		if r.Float64() < 0.5 {
			n--
		} else {
			n++
		}
	}
	return min(max(n, cfg.MinPerWeek), cfg.MaxPerWeek)
}

// StartTime picks a random start on day between the configured hours.
func StartTime(day time.Time, cfg Config, r rng.Source) time.Time {
	hour := cfg.EarliestHour + r.IntN(cfg.LatestHour-cfg.EarliestHour+1)
	minute := r.IntN(60)
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location())
}

// Duration returns a session length in minutes, scaled by the learner's
// duration, effort and consistency and jittered more for inconsistent
// learners.
func Duration(m profile.Resolved, cfg Config, r rng.Source) int {
	base := float64(cfg.BaseDuration)
	weighted := m.Duration*0.5 + m.Effort*0.3 + m.Consistency*0.2
	d := profile.Clamp(base*(0.5+weighted), 0.75*base, 1.5*base)

	spread := 5 + (1-m.Consistency)*10
	d += rng.Uniform(r, -spread, spread)

	return int(profile.Clamp(math.Round(d), float64(cfg.MinDuration), float64(cfg.MaxDuration)))
}

// Week schedules one week for learner. week is zero-based within
// totalWeeks and weekStart is the first day of the week. Sessions in which
// no activity could be run are dropped.
func (s *Scheduler) Week(learner profile.LearnerProfile, weekStart time.Time, week, totalWeeks int, activities []catalog.Activity) []LearningSession {
	phase := profile.PhaseFor(week, totalWeeks)
	m := learner.Metrics.At(phase)

	count := SessionsPerWeek(m, s.cfg, s.rng)
	var out []LearningSession
	for _, day := range rng.Pick(s.rng, 7, count) {
		start := StartTime(weekStart.AddDate(0, 0, day), s.cfg, s.rng)
		budget := Duration(m, s.cfg, s.rng)
		sess := s.Session(learner, phase, start, budget, activities)
		if len(sess.Activities) == 0 {
			continue
		}
		sess.Week = week
		out = append(out, sess)
	}
	return out
}

// Session runs activity passes from start until the budget (minutes) or
// the learner's eligible activities run out.
func (s *Scheduler) Session(learner profile.LearnerProfile, phase profile.Phase, start time.Time, budget int, activities []catalog.Activity) LearningSession {
	total := time.Duration(budget) * time.Minute
	sess := LearningSession{
		ID:            rng.UUID(s.rng).String(),
		LearnerID:     learner.ID,
		Start:         start,
		End:           start.Add(total),
		TotalDuration: total,
	}

	store := s.engine.Store()
	at := start
	remaining := budget
	for {
		p, ok := s.engine.Step(learner, phase, activities, remaining)
		if !ok {
			break
		}
		trace, degraded := events.SequenceOrDegrade(at, p, s.log)
		store.RecordTrace(learner.ID, p.Activity.ID, string(events.Last(trace)))

		d := time.Duration(p.Minutes) * time.Minute
		sess.Activities = append(sess.Activities, SessionActivity{
			Activity:     p.Activity,
			Start:        at,
			End:          at.Add(d),
			Duration:     d,
			Completed:    p.Completed,
			Interactions: trace,
			Pass:         p,
			Degraded:     degraded,
		})
		at = at.Add(d)
		remaining -= p.Minutes
	}
	return sess
}
