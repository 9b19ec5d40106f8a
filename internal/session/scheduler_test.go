package session

import (
	"testing"
	"time"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/logger"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/progress"
	"github.com/abhisek/learnsim/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestSessionsPerWeek(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name   string
		m      profile.Resolved
		script []float64
		want   int
	}{
		{"max effort, steady", profile.Resolved{Effort: 1, Consistency: 1}, []float64{0.9}, 6},
		{"no effort, steady", profile.Resolved{Effort: 0, Consistency: 1}, []float64{0.9}, 3},
		{"average, no swing", profile.Resolved{Effort: 0.6, Consistency: 0.6}, []float64{0.9}, 4},
		{"average, swing down", profile.Resolved{Effort: 0.6, Consistency: 0.6}, []float64{0.1, 0.2}, 3},
		{"average, swing up", profile.Resolved{Effort: 0.6, Consistency: 0.6}, []float64{0.1, 0.7}, 5},
		{"floor", profile.Resolved{Effort: 0, Consistency: 0}, []float64{0.1, 0.2}, 1},
		{"ceiling", profile.Resolved{Effort: 1, Consistency: 0.9}, []float64{0.05, 0.9}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SessionsPerWeek(tt.m, cfg, &rng.Scripted{Values: tt.script})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionsPerWeek_Bounds(t *testing.T) {
	r := rng.New(1)
	for i := 0; i < 500; i++ {
		m := profile.Resolved{Effort: r.Float64(), Consistency: r.Float64()}
		n := SessionsPerWeek(m, DefaultConfig(), r)
		require.True(t, n >= 1 && n <= 6, "got %d", n)
	}
}

func TestStartTime(t *testing.T) {
	cfg := DefaultConfig()
	day := monday.AddDate(0, 0, 2)

	got := StartTime(day, cfg, &rng.Scripted{Values: []float64{0, 0}})
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), got)

	got = StartTime(day, cfg, &rng.Scripted{Values: []float64{0.999, 0.999}})
	assert.Equal(t, time.Date(2026, 3, 4, 20, 59, 0, 0, time.UTC), got)
}

func TestDuration(t *testing.T) {
	cfg := DefaultConfig()
	mid := &rng.Scripted{Values: []float64{0.5}}

	assert.Equal(t, 66, Duration(profile.Resolved{Duration: 0.6, Effort: 0.6, Consistency: 0.6}, cfg, mid))
	assert.Equal(t, 90, Duration(profile.Resolved{Duration: 1, Effort: 1, Consistency: 1}, cfg, mid))
	assert.Equal(t, 45, Duration(profile.Resolved{Consistency: 1}, cfg, mid))

	r := rng.New(4)
	for i := 0; i < 500; i++ {
		m := profile.Resolved{Duration: r.Float64(), Effort: r.Float64(), Consistency: r.Float64()}
		d := Duration(m, cfg, r)
		require.True(t, d >= 45 && d <= 90, "got %d", d)
	}
}

func newScheduler(seed uint64) (*Scheduler, *progress.Store, rng.Source) {
	r := rng.New(seed)
	store := progress.NewStore()
	engine := progress.NewEngine(progress.DefaultConfig(), store, r)
	return NewScheduler(DefaultConfig(), engine, r, logger.Nop()), store, r
}

func TestSession_FillsBudget(t *testing.T) {
	s, store, _ := newScheduler(8)
	l := profile.LearnerProfile{
		ID: "l1",
		Metrics: profile.Metrics{
			Consistency: profile.Scalar(0.8),
			Scores:      profile.Scalar(0.8),
			Duration:    profile.Scalar(1),
			Effort:      profile.Scalar(0.8),
		},
	}
	acts := catalog.DemoCourse().Activities()
	start := monday.Add(10 * time.Hour)

	sess := s.Session(l, profile.PhaseStart, start, 90, acts)
	require.NotEmpty(t, sess.Activities)
	assert.Equal(t, 90*time.Minute, sess.TotalDuration)
	assert.Equal(t, start.Add(90*time.Minute), sess.End)
	assert.LessOrEqual(t, sess.ActiveDuration(), sess.TotalDuration)
	assert.NotEmpty(t, sess.ID)

	at := start
	for _, a := range sess.Activities {
		assert.Equal(t, at, a.Start)
		assert.GreaterOrEqual(t, a.Duration, 15*time.Minute)
		assert.Equal(t, a.Start.Add(a.Duration), a.End)
		for _, in := range a.Interactions {
			assert.False(t, in.Timestamp.Before(a.Start))
			assert.True(t, in.Timestamp.Before(a.End))
		}
		ap, ok := store.Peek("l1", a.Activity.ID)
		require.True(t, ok)
		assert.True(t, ap.Initialized)
		at = a.End
	}
	assert.Greater(t, sess.Interactions(), 0)
}

func TestSession_NoActivities(t *testing.T) {
	s, _, _ := newScheduler(1)
	sess := s.Session(profile.LearnerProfile{ID: "l1"}, profile.PhaseStart, monday, 60, nil)
	assert.Empty(t, sess.Activities)
}

func TestWeek_Invariants(t *testing.T) {
	s, store, r := newScheduler(21)
	profiles, err := profile.Generate(30, profile.DefaultConfig(), r)
	require.NoError(t, err)
	acts := catalog.DemoCourse().Activities()
	const weeks = 10

	for _, l := range profiles {
		for w := 0; w < weeks; w++ {
			weekStart := monday.AddDate(0, 0, 7*w)
			sessions := s.Week(l, weekStart, w, weeks, acts)
			assert.LessOrEqual(t, len(sessions), 6)

			days := map[int]bool{}
			for _, sess := range sessions {
				assert.Equal(t, w, sess.Week)
				assert.Equal(t, l.ID, sess.LearnerID)
				assert.LessOrEqual(t, sess.ActiveDuration(), sess.TotalDuration)
				assert.GreaterOrEqual(t, sess.TotalDuration, 45*time.Minute)
				assert.LessOrEqual(t, sess.TotalDuration, 90*time.Minute)
				assert.False(t, sess.Start.Before(weekStart))
				assert.True(t, sess.Start.Before(weekStart.AddDate(0, 0, 7)))
				h := sess.Start.Hour()
				assert.True(t, h >= 9 && h <= 20)

				day := int(sess.Start.Sub(weekStart).Hours()) / 24
				assert.False(t, days[day], "two sessions on one day")
				days[day] = true

				for _, a := range sess.Activities {
					assert.GreaterOrEqual(t, a.Duration, 15*time.Minute)
					last := events.Last(a.Interactions)
					if a.Degraded {
						continue
					}
					if last != events.KindRated {
						assert.Equal(t, events.KindExited, last)
					}
				}
			}
		}
		for id, ap := range store.Learner(l.ID) {
			assert.LessOrEqual(t, ap.Attempts, 3, id)
		}
	}
}
