package progress

import (
	"testing"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func learner(id string, scores, speed, consistency float64) profile.LearnerProfile {
	return profile.LearnerProfile{
		ID:      id,
		Email:   id + "@example.com",
		Persona: profile.PersonaAverage,
		Metrics: profile.Metrics{
			Consistency: profile.Scalar(consistency),
			Scores:      profile.Scalar(scores),
			Duration:    profile.Scalar(speed),
			Effort:      profile.Scalar(0.6),
		},
	}
}

func activity(id string, difficulty float64, minutes int, p float64) catalog.Activity {
	return catalog.Activity{ID: id, Title: id, Difficulty: difficulty, EstimatedDuration: minutes, Probability: p, Rating: 0.8}
}

func TestScore_Scenario(t *testing.T) {
	got := Score(ScoreInput{ScoresMetric: 0.6, Consistency: 1.0, Difficulty: 0.2, Attempts: 1}, rng.New(1))
	assert.Equal(t, 84, got)
}

func TestScore_Clamped(t *testing.T) {
	high := Score(ScoreInput{ScoresMetric: 1, Consistency: 1, Difficulty: 0, Attempts: 3}, rng.New(1))
	assert.Equal(t, 100, high)

	low := Score(ScoreInput{ScoresMetric: 0, Consistency: 0, Difficulty: 1, Attempts: 1}, &rng.Scripted{Values: []float64{0}})
	assert.Equal(t, 0, low)
}

func TestScore_VariationNarrowsWithConsistency(t *testing.T) {
	r := rng.New(3)
	for i := 0; i < 200; i++ {
		s := Score(ScoreInput{ScoresMetric: 0.5, Consistency: 0.6, Difficulty: 0.5, Attempts: 1}, r)
		// 50 + 15 ± 3
		assert.InDelta(t, 65, s, 3)
	}
}

func TestRating(t *testing.T) {
	assert.Equal(t, 5, Rating(1.0, 1.0, rng.New(1)))
	assert.Equal(t, 1, Rating(0.0, 1.0, rng.New(1)))
	assert.Equal(t, 4, Rating(0.75, 1.0, rng.New(1)))
	r := rng.New(9)
	for i := 0; i < 100; i++ {
		v := Rating(0.5, 0, r)
		assert.True(t, v >= 1 && v <= 5)
	}
}

func TestSelectWeighted(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.5, 30, 0.49), activity("B", 0.5, 30, 0.05)}
	total := TotalProbability(acts)
	assert.InDelta(t, 0.54, total, 1e-9)

	tests := []struct {
		draw float64
		want string
	}{
		{0, "A"},
		{0.5 * total, "A"},
		{0.49, "A"},
		{0.50, "B"},
		{total - 1e-9, "B"},
		{total + 1e-6, "B"},
	}
	for _, tt := range tests {
		got, ok := SelectWeighted(acts, tt.draw)
		require.True(t, ok)
		assert.Equal(t, tt.want, got.ID, "draw %.3f", tt.draw)
	}

	_, ok := SelectWeighted([]catalog.Activity{activity("Z", 0.5, 30, 0)}, 0)
	assert.False(t, ok)
}

func TestEngine_SelectDeterministic(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.5, 30, 0.49), activity("B", 0.5, 30, 0.05)}
	e := NewEngine(DefaultConfig(), NewStore(), &rng.Scripted{Values: []float64{0.5}})
	got, ok := e.Select("l1", acts)
	require.True(t, ok)
	assert.Equal(t, "A", got.ID)

	e = NewEngine(DefaultConfig(), NewStore(), &rng.Scripted{Values: []float64{0.95}})
	got, ok = e.Select("l1", acts)
	require.True(t, ok)
	assert.Equal(t, "B", got.ID)
}

func TestEngine_SelectUniformWhenWeightless(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.5, 30, 0), activity("B", 0.5, 30, 0)}
	e := NewEngine(DefaultConfig(), NewStore(), &rng.Scripted{Values: []float64{0.7}})
	got, ok := e.Select("l1", acts)
	require.True(t, ok)
	assert.Equal(t, "B", got.ID)
}

func TestEngine_SelectSkipsCompletedAndExhausted(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.5, 30, 0.9), activity("B", 0.5, 30, 0.1)}
	store := NewStore()
	store.Get("l1", "A").Completed = true
	e := NewEngine(DefaultConfig(), store, rng.New(1))

	for i := 0; i < 10; i++ {
		got, ok := e.Select("l1", acts)
		require.True(t, ok)
		assert.Equal(t, "B", got.ID)
	}

	store.Get("l1", "B").Attempts = 3
	_, ok := e.Select("l1", acts)
	assert.False(t, ok)
}

func TestEngine_StepProgressAcrossPasses(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.2, 30, 1), activity("B", 0.2, 30, 0)}
	store := NewStore()
	e := NewEngine(DefaultConfig(), store, rng.New(1))
	l := learner("l1", 0.6, 0.5, 1.0)

	// speed 0.5: adjusted = 60, spent = 60, increment = 0.5
	p, ok := e.Step(l, profile.PhaseStart, acts, 90)
	require.True(t, ok)
	assert.Equal(t, "A", p.Activity.ID)
	assert.Equal(t, 60, p.AdjustedDuration)
	assert.Equal(t, 60, p.Minutes)
	assert.True(t, p.FirstAttempt)
	assert.Equal(t, 0.5, p.Progress)
	assert.False(t, p.Scored)

	cur, ok := store.Current("l1")
	require.True(t, ok)
	assert.Equal(t, "A", cur)
	store.RecordTrace("l1", "A", "exited")

	// Only 30 minutes left: increment = 30/60 × 0.5 = 0.25
	p, ok = e.Step(l, profile.PhaseStart, acts, 30)
	require.True(t, ok)
	assert.False(t, p.FirstAttempt)
	assert.Equal(t, 30, p.Minutes)
	assert.Equal(t, 0.75, p.Progress)
	assert.False(t, p.Scored)

	p, ok = e.Step(l, profile.PhaseStart, acts, 60)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Progress)
	require.True(t, p.Scored)
	assert.Equal(t, 1, p.Attempt)
	assert.Equal(t, 84, p.Score)
	assert.True(t, p.Passed)
	assert.True(t, p.Completed)
	assert.Equal(t, 4, p.Rating)

	_, ok = store.Current("l1")
	assert.False(t, ok)
	ap, _ := store.Peek("l1", "A")
	assert.True(t, ap.Completed)
}

func TestEngine_StepBudgetTooSmall(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.2, 30, 1)}
	store := NewStore()
	e := NewEngine(DefaultConfig(), store, rng.New(1))

	_, ok := e.Step(learner("l1", 0.6, 1, 1), profile.PhaseStart, acts, 14)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestEngine_StepShortActivityNotRecorded(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.2, 10, 1)}
	store := NewStore()
	e := NewEngine(DefaultConfig(), store, rng.New(1))

	_, ok := e.Step(learner("l1", 0.6, 1, 1), profile.PhaseStart, acts, 60)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
	_, current := store.Current("l1")
	assert.False(t, current)
}

func TestEngine_StepSpendsAdjustedDuration(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.2, 20, 1)}
	e := NewEngine(DefaultConfig(), NewStore(), rng.New(1))

	p, ok := e.Step(learner("l1", 0.6, 1, 1), profile.PhaseStart, acts, 60)
	require.True(t, ok)
	assert.Equal(t, 20, p.AdjustedDuration)
	assert.Equal(t, 20, p.Minutes)
	assert.Equal(t, 1.0, p.Progress)
}

func TestEngine_FailedAttemptsExhaust(t *testing.T) {
	acts := []catalog.Activity{activity("A", 1.0, 30, 1)}
	store := NewStore()
	e := NewEngine(DefaultConfig(), store, rng.New(1))
	l := learner("l1", 0, 1, 1)

	wantScores := []int{0, 20, 40}
	for i, want := range wantScores {
		p, ok := e.Step(l, profile.PhaseStart, acts, 60)
		require.True(t, ok)
		require.True(t, p.Scored)
		assert.Equal(t, i+1, p.Attempt)
		assert.Equal(t, want, p.Score)
		assert.False(t, p.Passed)
		assert.Equal(t, i == 2, p.Completed)
		assert.Zero(t, p.Rating)
		if !p.Completed {
			ap, _ := store.Peek("l1", "A")
			assert.Zero(t, ap.CurrentProgress, "failed attempt resets progress")
		}
	}

	_, ok := e.Step(l, profile.PhaseStart, acts, 60)
	assert.False(t, ok, "no eligible activity left")
}

func TestEngine_PhaseAwareSpeed(t *testing.T) {
	acts := []catalog.Activity{activity("A", 0.2, 30, 1)}
	l := learner("l1", 0.6, 1, 1)
	l.Metrics.Duration = profile.Phased(0.5, 1.0, 0.25)

	e := NewEngine(DefaultConfig(), NewStore(), rng.New(1))
	p, ok := e.Step(l, profile.PhaseEnd, acts, 200)
	require.True(t, ok)
	assert.Equal(t, 120, p.AdjustedDuration)
}

func TestEngine_Invariants(t *testing.T) {
	course := catalog.DemoCourse()
	acts := course.Activities()
	r := rng.New(2024)
	profiles, err := profile.Generate(60, profile.DefaultConfig(), r)
	require.NoError(t, err)

	store := NewStore()
	e := NewEngine(DefaultConfig(), store, r)
	for _, l := range profiles {
		last := map[string]float64{}
		for week := 0; week < 20; week++ {
			phase := profile.PhaseFor(week, 20)
			remaining := 90
			for {
				p, ok := e.Step(l, phase, acts, remaining)
				if !ok {
					break
				}
				require.GreaterOrEqual(t, p.Minutes, DefaultConfig().MinSessionTime)
				require.LessOrEqual(t, p.Minutes, remaining)
				require.GreaterOrEqual(t, p.Progress, 0.0)
				require.LessOrEqual(t, p.Progress, 1.0)
				require.GreaterOrEqual(t, p.Progress, last[p.Activity.ID])
				if p.Scored && !p.Completed {
					last[p.Activity.ID] = 0
				} else {
					last[p.Activity.ID] = p.Progress
				}
				remaining -= p.Minutes
			}
		}
		for id, ap := range store.Learner(l.ID) {
			assert.LessOrEqual(t, ap.Attempts, DefaultConfig().MaxAttempts, "%s/%s", l.Email, id)
		}
	}
}
