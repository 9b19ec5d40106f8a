package profile

import (
	"encoding/json"
	"fmt"
)

// Persona names a behavioral archetype.
type Persona string

const (
	PersonaStruggler Persona = "struggler"
	PersonaAverage   Persona = "average"
	PersonaSprinter  Persona = "sprinter"
	PersonaGritty    Persona = "gritty"
	PersonaCoaster   Persona = "coaster"

	PersonaOutlierA Persona = "outlierA"
	PersonaOutlierB Persona = "outlierB"
	PersonaOutlierC Persona = "outlierC"
	PersonaOutlierD Persona = "outlierD"
)

// AllPersonas returns every persona in display order, regular personas first.
func AllPersonas() []Persona {
	return []Persona{
		PersonaStruggler, PersonaAverage, PersonaSprinter, PersonaGritty, PersonaCoaster,
		PersonaOutlierA, PersonaOutlierB, PersonaOutlierC, PersonaOutlierD,
	}
}

// IsOutlier reports whether the persona uses phase-varying metrics.
func (p Persona) IsOutlier() bool {
	switch p {
	case PersonaOutlierA, PersonaOutlierB, PersonaOutlierC, PersonaOutlierD:
		return true
	default:
		return false
	}
}

// Level is a qualitative metric level.
type Level string

const (
	VeryLow  Level = "very low"
	Low      Level = "low"
	Average  Level = "average"
	High     Level = "high"
	VeryHigh Level = "very high"
)

// Value maps a level onto the fixed five-point scale.
func (l Level) Value() float64 {
	switch l {
	case VeryLow:
		return 0.2
	case Low:
		return 0.4
	case High:
		return 0.8
	case VeryHigh:
		return 1.0
	default:
		return 0.6
	}
}

// Phase is a coarse position within the simulated course timeline.
type Phase string

const (
	PhaseStart  Phase = "start"
	PhaseMiddle Phase = "middle"
	PhaseEnd    Phase = "end"
)

// AllPhases returns the phases in timeline order.
func AllPhases() []Phase {
	return []Phase{PhaseStart, PhaseMiddle, PhaseEnd}
}

// PhaseFor resolves the phase of a zero-based week within totalWeeks.
func PhaseFor(week, totalWeeks int) Phase {
	if totalWeeks <= 0 {
		return PhaseStart
	}
	ratio := float64(week) / float64(totalWeeks)
	switch {
	case ratio < 0.33:
		return PhaseStart
	case ratio < 0.67:
		return PhaseMiddle
	default:
		return PhaseEnd
	}
}

func (p Phase) index() int {
	switch p {
	case PhaseMiddle:
		return 1
	case PhaseEnd:
		return 2
	default:
		return 0
	}
}

// Metric is either a time-invariant scalar or a three-phase record.
type Metric struct {
	phased bool
	scalar float64
	phases [3]float64
}

// Scalar returns a phase-invariant metric.
func Scalar(v float64) Metric {
	return Metric{scalar: v}
}

// Phased returns a metric that varies by course phase.
func Phased(start, middle, end float64) Metric {
	return Metric{phased: true, phases: [3]float64{start, middle, end}}
}

// IsPhased reports whether the metric varies by phase.
func (m Metric) IsPhased() bool {
	return m.phased
}

// Resolve returns the metric value for the given phase. Scalar metrics
// ignore the phase.
func (m Metric) Resolve(p Phase) float64 {
	if !m.phased {
		return m.scalar
	}
	return m.phases[p.index()]
}

type phasedJSON struct {
	Start  float64 `json:"start"`
	Middle float64 `json:"middle"`
	End    float64 `json:"end"`
}

// MarshalJSON encodes scalars as numbers and phased metrics as objects.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.phased {
		return json.Marshal(m.scalar)
	}
	return json.Marshal(phasedJSON{Start: m.phases[0], Middle: m.phases[1], End: m.phases[2]})
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*m = Scalar(v)
		return nil
	}
	var p phasedJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("metric must be a number or a phase record: %w", err)
	}
	*m = Phased(p.Start, p.Middle, p.End)
	return nil
}

// Metrics holds the four behavioral dimensions of a learner.
type Metrics struct {
	Consistency Metric `json:"consistency"`
	Scores      Metric `json:"scores"`
	Duration    Metric `json:"duration"`
	Effort      Metric `json:"effort"`
}

// Resolved is a phase-resolved view of Metrics.
type Resolved struct {
	Consistency float64
	Scores      float64
	Duration    float64
	Effort      float64
}

// At resolves every metric for phase p.
func (m Metrics) At(p Phase) Resolved {
	return Resolved{
		Consistency: m.Consistency.Resolve(p),
		Scores:      m.Scores.Resolve(p),
		Duration:    m.Duration.Resolve(p),
		Effort:      m.Effort.Resolve(p),
	}
}

// LearnerProfile is one simulated learner. Profiles are immutable after
// generation.
type LearnerProfile struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Persona Persona `json:"personaType"`
	Metrics Metrics `json:"metrics"`
}
