package session

// Config holds the session scheduling parameters. Durations are minutes.
type Config struct {
	// BaseDuration is the nominal session length before learner scaling.
	BaseDuration int

	// MinDuration and MaxDuration bound the final session length.
	MinDuration int
	MaxDuration int

	// MinPerWeek and MaxPerWeek bound the weekly session count.
	MinPerWeek int
	MaxPerWeek int

	// EarliestHour and LatestHour bound the session start hour (inclusive).
	EarliestHour int
	LatestHour   int
}

// DefaultConfig returns the standard scheduling parameters.
func DefaultConfig() Config {
	return Config{
		BaseDuration: 60,
		MinDuration:  45,
		MaxDuration:  90,
		MinPerWeek:   1,
		MaxPerWeek:   6,
		EarliestHour: 9,
		LatestHour:   20,
	}
}
