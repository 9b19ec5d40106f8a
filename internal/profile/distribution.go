package profile

import "slices"

// Share is one persona's slice of a population.
type Share struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Report maps personas to their population share.
type Report map[Persona]Share

// Distribution tallies a population by persona. Percentages are relative to
// the actual population size and rounded to 2 decimals.
func Distribution(profiles []LearnerProfile) Report {
	report := make(Report)
	if len(profiles) == 0 {
		return report
	}
	counts := make(map[Persona]int)
	for _, p := range profiles {
		counts[p.Persona]++
	}
	total := float64(len(profiles))
	for persona, c := range counts {
		report[persona] = Share{
			Count:      c,
			Percentage: Round(float64(c)/total*100, 2),
		}
	}
	return report
}

// Personas returns the report's personas in display order.
func (r Report) Personas() []Persona {
	var out []Persona
	for _, p := range AllPersonas() {
		if _, ok := r[p]; ok {
			out = append(out, p)
		}
	}
	var extra []Persona
	for p := range r {
		if !slices.Contains(out, p) {
			extra = append(extra, p)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// Total returns the number of learners in the report.
func (r Report) Total() int {
	n := 0
	for _, s := range r {
		n += s.Count
	}
	return n
}
