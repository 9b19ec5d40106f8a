package progress

// Config holds the activity progress engine parameters.
type Config struct {
	// MaxAttempts bounds scored attempts per activity. Reaching it
	// completes the activity regardless of score.
	MaxAttempts int

	// MinSessionTime is the shortest pass, in minutes, worth recording.
	MinSessionTime int

	// ProgressThreshold is the progress at which an attempt is scored.
	ProgressThreshold float64

	// PassingScore is the lowest passing score (0-100).
	PassingScore int
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		MinSessionTime:    15,
		ProgressThreshold: 0.8,
		PassingScore:      50,
	}
}
