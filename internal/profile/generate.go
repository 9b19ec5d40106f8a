package profile

import (
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/learnsim/internal/rng"
)

// ErrInvalidCount is returned when the requested learner count is not positive.
var ErrInvalidCount = errors.New("learner count must be positive")

// Config controls population generation.
type Config struct {
	// Variance is the half-width of the uniform noise added to each level.
	Variance float64

	// EmailDomain is appended to generated learner mailboxes.
	EmailDomain string

	// Archetypes is the persona distribution to sample.
	Archetypes []Archetype
}

// DefaultConfig returns the standard population settings.
func DefaultConfig() Config {
	return Config{
		Variance:    0.1,
		EmailDomain: "example.com",
		Archetypes:  DefaultArchetypes(),
	}
}

// Generate builds a population of roughly n learners. Each archetype gets
// round(n × share) learners; the total is not reconciled with n.
func Generate(n int, cfg Config, r rng.Source) ([]LearnerProfile, error) {
	if n <= 0 {
		return nil, fmt.Errorf("generate %d learners: %w", n, ErrInvalidCount)
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = DefaultConfig().EmailDomain
	}
	if len(cfg.Archetypes) == 0 {
		cfg.Archetypes = DefaultArchetypes()
	}

	var out []LearnerProfile
	for _, a := range cfg.Archetypes {
		count := TargetCount(n, a.Share)
		for i := 1; i <= count; i++ {
			out = append(out, LearnerProfile{
				ID:      rng.UUID(r).String(),
				Email:   fmt.Sprintf("%s.%d@%s", a.Persona, i, cfg.EmailDomain),
				Persona: a.Persona,
				Metrics: sampleMetrics(a, cfg.Variance, r),
			})
		}
	}
	return out, nil
}

// TargetCount is the number of learners an archetype with the given share
// receives in a population of n.
func TargetCount(n int, share float64) int {
	return int(math.Round(float64(n) * share))
}

func sampleMetrics(a Archetype, variance float64, r rng.Source) Metrics {
	if len(a.Levels) == 0 {
		avg := LevelSet{Consistency: Average, Scores: Average, Duration: Average, Effort: Average}
		a.Levels = []LevelSet{avg}
	}
	if len(a.Levels) < 3 {
		l := a.Levels[0]
		return Metrics{
			Consistency: Scalar(Sample(l.Consistency, variance, r)),
			Scores:      Scalar(Sample(l.Scores, variance, r)),
			Duration:    Scalar(Sample(l.Duration, variance, r)),
			Effort:      Scalar(Sample(l.Effort, variance, r)),
		}
	}
	phased := func(pick func(LevelSet) Level) Metric {
		return Phased(
			Sample(pick(a.Levels[0]), variance, r),
			Sample(pick(a.Levels[1]), variance, r),
			Sample(pick(a.Levels[2]), variance, r),
		)
	}
	return Metrics{
		Consistency: phased(func(l LevelSet) Level { return l.Consistency }),
		Scores:      phased(func(l LevelSet) Level { return l.Scores }),
		Duration:    phased(func(l LevelSet) Level { return l.Duration }),
		Effort:      phased(func(l LevelSet) Level { return l.Effort }),
	}
}

// Sample draws level ± variance, clamped to [0,1] and rounded to 2 decimals.
func Sample(l Level, variance float64, r rng.Source) float64 {
	v := l.Value() + rng.Uniform(r, -variance, variance)
	return Round(Clamp(v, 0, 1), 2)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
