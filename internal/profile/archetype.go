package profile

// LevelSet assigns a qualitative level to each metric dimension.
type LevelSet struct {
	Consistency Level
	Scores      Level
	Duration    Level
	Effort      Level
}

// Archetype declares a persona's population share and its levels.
// Regular personas carry one LevelSet; outliers carry one per phase
// (start, middle, end).
type Archetype struct {
	Persona     Persona
	Description string
	Share       float64
	Levels      []LevelSet
}

// DefaultArchetypes returns the built-in persona distribution. Regular
// shares sum to 0.94; the outliers make up the remaining 0.06.
func DefaultArchetypes() []Archetype {
	return []Archetype{
		{
			Persona:     PersonaStruggler,
			Description: "Works steadily but slowly and scores poorly",
			Share:       0.20,
			Levels:      []LevelSet{{Consistency: Low, Scores: Low, Duration: Low, Effort: Average}},
		},
		{
			Persona:     PersonaAverage,
			Description: "Middle of the road on every dimension",
			Share:       0.35,
			Levels:      []LevelSet{{Consistency: Average, Scores: Average, Duration: Average, Effort: Average}},
		},
		{
			Persona:     PersonaSprinter,
			Description: "Fast and capable but irregular",
			Share:       0.15,
			Levels:      []LevelSet{{Consistency: Low, Scores: High, Duration: VeryHigh, Effort: Low}},
		},
		{
			Persona:     PersonaGritty,
			Description: "Slow learner who shows up for every session",
			Share:       0.15,
			Levels:      []LevelSet{{Consistency: VeryHigh, Scores: Average, Duration: Low, Effort: VeryHigh}},
		},
		{
			Persona:     PersonaCoaster,
			Description: "Quick enough but puts in little effort",
			Share:       0.09,
			Levels:      []LevelSet{{Consistency: Low, Scores: Average, Duration: High, Effort: VeryLow}},
		},
		{
			Persona:     PersonaOutlierA,
			Description: "Strong start that fades out",
			Share:       0.02,
			Levels: []LevelSet{
				{Consistency: High, Scores: High, Duration: High, Effort: VeryHigh},
				{Consistency: Average, Scores: Average, Duration: Average, Effort: Average},
				{Consistency: VeryLow, Scores: Low, Duration: Low, Effort: VeryLow},
			},
		},
		{
			Persona:     PersonaOutlierB,
			Description: "Late bloomer",
			Share:       0.015,
			Levels: []LevelSet{
				{Consistency: VeryLow, Scores: Low, Duration: Low, Effort: Low},
				{Consistency: Average, Scores: Average, Duration: Average, Effort: Average},
				{Consistency: VeryHigh, Scores: VeryHigh, Duration: High, Effort: VeryHigh},
			},
		},
		{
			Persona:     PersonaOutlierC,
			Description: "Mid-course slump",
			Share:       0.015,
			Levels: []LevelSet{
				{Consistency: High, Scores: High, Duration: Average, Effort: High},
				{Consistency: VeryLow, Scores: Low, Duration: Low, Effort: VeryLow},
				{Consistency: High, Scores: High, Duration: Average, Effort: High},
			},
		},
		{
			Persona:     PersonaOutlierD,
			Description: "Crammer who only engages near the end",
			Share:       0.01,
			Levels: []LevelSet{
				{Consistency: VeryLow, Scores: Average, Duration: Average, Effort: VeryLow},
				{Consistency: Low, Scores: Average, Duration: Average, Effort: Low},
				{Consistency: Low, Scores: High, Duration: VeryHigh, Effort: VeryHigh},
			},
		},
	}
}
