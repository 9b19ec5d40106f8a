package profile

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/abhisek/learnsim/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelValue(t *testing.T) {
	tests := []struct {
		level Level
		want  float64
	}{
		{VeryLow, 0.2},
		{Low, 0.4},
		{Average, 0.6},
		{High, 0.8},
		{VeryHigh, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.Value(), string(tt.level))
	}
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		week, total int
		want        Phase
	}{
		{0, 12, PhaseStart},
		{3, 12, PhaseStart},
		{4, 12, PhaseMiddle},
		{7, 12, PhaseMiddle},
		{8, 12, PhaseEnd},
		{11, 12, PhaseEnd},
		{0, 0, PhaseStart},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseFor(tt.week, tt.total), "week %d/%d", tt.week, tt.total)
	}
}

func TestMetricResolve(t *testing.T) {
	s := Scalar(0.4)
	for _, p := range AllPhases() {
		assert.Equal(t, 0.4, s.Resolve(p))
	}
	assert.False(t, s.IsPhased())

	m := Phased(0.2, 0.6, 1.0)
	assert.True(t, m.IsPhased())
	assert.Equal(t, 0.2, m.Resolve(PhaseStart))
	assert.Equal(t, 0.6, m.Resolve(PhaseMiddle))
	assert.Equal(t, 1.0, m.Resolve(PhaseEnd))
}

func TestMetricJSON(t *testing.T) {
	data, err := json.Marshal(Metrics{
		Consistency: Scalar(0.5),
		Scores:      Phased(0.1, 0.2, 0.3),
		Duration:    Scalar(1),
		Effort:      Scalar(0),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"consistency":0.5,"scores":{"start":0.1,"middle":0.2,"end":0.3},"duration":1,"effort":0}`, string(data))

	var back Metrics
	require.NoError(t, json.Unmarshal(data, &back))
	assert.False(t, back.Consistency.IsPhased())
	assert.True(t, back.Scores.IsPhased())
	assert.Equal(t, 0.2, back.Scores.Resolve(PhaseMiddle))

	var bad Metric
	assert.Error(t, json.Unmarshal([]byte(`"high"`), &bad))
}

func TestGenerate_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		out, err := Generate(n, DefaultConfig(), rng.New(1))
		assert.True(t, errors.Is(err, ErrInvalidCount))
		assert.Nil(t, out)
	}
}

func TestGenerate_DistributionMatchesTargets(t *testing.T) {
	profiles, err := Generate(100, DefaultConfig(), rng.New(1))
	require.NoError(t, err)

	report := Distribution(profiles)
	for _, a := range DefaultArchetypes() {
		want := int(math.Round(100 * a.Share))
		got := report[a.Persona].Count
		assert.LessOrEqual(t, abs(got-want), 1, "persona %s: got %d want %d", a.Persona, got, want)
	}
}

func TestGenerate_RoundingNotReconciled(t *testing.T) {
	// 40 learners: 8+14+6+6+4 regular (3.6 rounds up) and 1+1+1+0 outliers.
	profiles, err := Generate(40, DefaultConfig(), rng.New(1))
	require.NoError(t, err)
	assert.Equal(t, 41, len(profiles))
}

func TestGenerate_MetricsBounded(t *testing.T) {
	profiles, err := Generate(500, DefaultConfig(), rng.New(5))
	require.NoError(t, err)
	for _, p := range profiles {
		assert.Equal(t, p.Persona.IsOutlier(), p.Metrics.Scores.IsPhased(), p.Email)
		for _, ph := range AllPhases() {
			r := p.Metrics.At(ph)
			for _, v := range []float64{r.Consistency, r.Scores, r.Duration, r.Effort} {
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 1.0)
				assert.Equal(t, Round(v, 2), v)
			}
		}
	}
}

func TestGenerate_MetricsNearLevel(t *testing.T) {
	profiles, err := Generate(200, DefaultConfig(), rng.New(11))
	require.NoError(t, err)
	for _, p := range profiles {
		if p.Persona != PersonaGritty {
			continue
		}
		// very high effort: 1.0 - 0.1 .. clamped 1.0
		assert.GreaterOrEqual(t, p.Metrics.Effort.Resolve(PhaseStart), 0.9)
		// low duration: 0.4 ± 0.1
		assert.InDelta(t, 0.4, p.Metrics.Duration.Resolve(PhaseEnd), 0.1+1e-9)
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	a, err := Generate(50, DefaultConfig(), rng.New(77))
	require.NoError(t, err)
	b, err := Generate(50, DefaultConfig(), rng.New(77))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_EmailsUnique(t *testing.T) {
	profiles, err := Generate(300, DefaultConfig(), rng.New(2))
	require.NoError(t, err)
	seen := map[string]bool{}
	ids := map[string]bool{}
	for _, p := range profiles {
		assert.False(t, seen[p.Email], p.Email)
		assert.False(t, ids[p.ID], p.ID)
		seen[p.Email] = true
		ids[p.ID] = true
	}
	assert.Contains(t, profiles[0].Email, "@example.com")
}

func TestSample_ZeroVariance(t *testing.T) {
	assert.Equal(t, 0.8, Sample(High, 0, rng.New(1)))
}

func TestDistribution(t *testing.T) {
	report := Distribution([]LearnerProfile{
		{Persona: PersonaAverage},
		{Persona: PersonaAverage},
		{Persona: PersonaGritty},
	})
	assert.Equal(t, Share{Count: 2, Percentage: 66.67}, report[PersonaAverage])
	assert.Equal(t, Share{Count: 1, Percentage: 33.33}, report[PersonaGritty])
	assert.Equal(t, []Persona{PersonaAverage, PersonaGritty}, report.Personas())
	assert.Equal(t, 3, report.Total())
	assert.Empty(t, Distribution(nil))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
