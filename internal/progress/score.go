package progress

import (
	"math"

	"github.com/abhisek/learnsim/internal/rng"
)

// ScoreInput gathers the factors of an attempt's score.
type ScoreInput struct {
	// ScoresMetric and Consistency are the learner's phase-resolved metrics.
	ScoresMetric float64
	Consistency  float64

	// Difficulty is the activity difficulty in [0,1].
	Difficulty float64

	// Attempts counts scored attempts including this one.
	Attempts int
}

// Score computes an attempt's score in [0,100]:
//
//	base       = scores × 100
//	difficulty = (1 − difficulty) × 30
//	retry      = (attempts − 1) × 20
//	variation  = uniform, width (1 − consistency) × 15, centered on zero
func Score(in ScoreInput, r rng.Source) int {
	base := in.ScoresMetric * 100
	difficultyImpact := (1 - in.Difficulty) * 30
	attemptBonus := float64(max(in.Attempts-1, 0)) * 20
	variation := rng.Centered(r, (1-in.Consistency)*15)

	s := math.Round(base + difficultyImpact + attemptBonus + variation)
	return int(math.Max(0, math.Min(100, s)))
}

// Rating turns an activity's typical rating in [0,1] into a 1-5 star rating,
// noisier for less consistent learners.
func Rating(activityRating, consistency float64, r rng.Source) int {
	v := math.Round(1 + activityRating*4 + rng.Centered(r, (1-consistency)*2))
	return int(math.Max(1, math.Min(5, v)))
}
