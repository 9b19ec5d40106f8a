// Package config loads learnsim settings from YAML files and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/learnsim/internal/lrs"
	"github.com/abhisek/learnsim/internal/logger"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/progress"
	"github.com/abhisek/learnsim/internal/session"
	"github.com/abhisek/learnsim/internal/xapi"
)

// dateLayout is the format of StartDate.
const dateLayout = "2006-01-02"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config contains all learnsim settings.
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Session    SessionConfig    `json:"session" yaml:"session"`
	XAPI       XAPIConfig       `json:"xapi" yaml:"xapi"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	LRS        LRSConfig        `json:"lrs" yaml:"lrs"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
}

// SimulationConfig sizes the simulated population and course run.
type SimulationConfig struct {
	Seed        uint64  `json:"seed" yaml:"seed"`
	Learners    int     `json:"learners" yaml:"learners"`
	Weeks       int     `json:"weeks" yaml:"weeks"`
	StartDate   string  `json:"start_date" yaml:"start_date"`
	EmailDomain string  `json:"email_domain" yaml:"email_domain"`
	Variance    float64 `json:"variance" yaml:"variance"`

	// CourseFile and VerbsFile override the bundled catalogs.
	CourseFile string `json:"course_file,omitempty" yaml:"course_file,omitempty"`
	VerbsFile  string `json:"verbs_file,omitempty" yaml:"verbs_file,omitempty"`
}

// EngineConfig holds activity progress parameters.
type EngineConfig struct {
	MaxAttempts       int     `json:"max_attempts" yaml:"max_attempts"`
	MinSessionTime    int     `json:"min_session_time" yaml:"min_session_time"`
	ProgressThreshold float64 `json:"progress_threshold" yaml:"progress_threshold"`
	PassingScore      int     `json:"passing_score" yaml:"passing_score"`
}

// SessionConfig holds scheduling parameters; durations are minutes.
type SessionConfig struct {
	BaseDuration int `json:"base_duration" yaml:"base_duration"`
	MinDuration  int `json:"min_duration" yaml:"min_duration"`
	MaxDuration  int `json:"max_duration" yaml:"max_duration"`
	MinPerWeek   int `json:"min_per_week" yaml:"min_per_week"`
	MaxPerWeek   int `json:"max_per_week" yaml:"max_per_week"`
	EarliestHour int `json:"earliest_hour" yaml:"earliest_hour"`
	LatestHour   int `json:"latest_hour" yaml:"latest_hour"`
}

// XAPIConfig controls statement stamping and submission.
type XAPIConfig struct {
	Version           string `json:"version" yaml:"version"`
	IRIBase           string `json:"iri_base" yaml:"iri_base"`
	InstructorName    string `json:"instructor_name" yaml:"instructor_name"`
	InstructorMailbox string `json:"instructor_mailbox" yaml:"instructor_mailbox"`
	Language          string `json:"language" yaml:"language"`
	Platform          string `json:"platform" yaml:"platform"`
	BatchSize         int    `json:"batch_size" yaml:"batch_size"`
	Validate          bool   `json:"validate" yaml:"validate"`
}

// StoreConfig selects the statement database. An empty DSN means the
// default SQLite path.
type StoreConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

// LRSConfig configures the optional Learning Record Store sink.
type LRSConfig struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Username string        `json:"username" yaml:"username"`
	Password string        `json:"password,omitempty" yaml:"password,omitempty"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// String implements fmt.Stringer so the password never reaches logs.
func (c LRSConfig) String() string {
	pw := ""
	if c.Password != "" {
		pw = "(set)"
	}
	return fmt.Sprintf("LRSConfig{Endpoint:%s, Username:%s, Password:%s}", c.Endpoint, c.Username, pw)
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Mode   string `json:"mode" yaml:"mode"`
	Redact bool   `json:"redact" yaml:"redact"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Default returns a Config with the standard simulation parameters.
func Default() *Config {
	pc := progress.DefaultConfig()
	sc := session.DefaultConfig()
	xc := xapi.DefaultConfig()
	return &Config{
		Simulation: SimulationConfig{
			Seed:        1,
			Learners:    100,
			Weeks:       12,
			StartDate:   "2025-01-06",
			EmailDomain: profile.DefaultConfig().EmailDomain,
			Variance:    profile.DefaultConfig().Variance,
		},
		Engine: EngineConfig{
			MaxAttempts:       pc.MaxAttempts,
			MinSessionTime:    pc.MinSessionTime,
			ProgressThreshold: pc.ProgressThreshold,
			PassingScore:      pc.PassingScore,
		},
		Session: SessionConfig{
			BaseDuration: sc.BaseDuration,
			MinDuration:  sc.MinDuration,
			MaxDuration:  sc.MaxDuration,
			MinPerWeek:   sc.MinPerWeek,
			MaxPerWeek:   sc.MaxPerWeek,
			EarliestHour: sc.EarliestHour,
			LatestHour:   sc.LatestHour,
		},
		XAPI: XAPIConfig{
			Version:           xc.Version,
			IRIBase:           xc.IRIBase,
			InstructorName:    xc.InstructorName,
			InstructorMailbox: xc.InstructorMailbox,
			Language:          xc.Language,
			Platform:          xc.Platform,
			BatchSize:         xapi.DefaultBatchSize,
			Validate:          true,
		},
		LRS: LRSConfig{
			Timeout: lrs.DefaultConfig().Timeout,
		},
		Logging: LoggingConfig{
			Level: "info",
			Mode:  "dev",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// when path is non-empty, then LEARNSIM_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.LRS.Password = os.ExpandEnv(cfg.LRS.Password)
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	s := c.Simulation
	if s.Learners <= 0 {
		return invalid("learners must be positive, got %d", s.Learners)
	}
	if s.Weeks <= 0 {
		return invalid("weeks must be positive, got %d", s.Weeks)
	}
	if _, err := time.Parse(dateLayout, s.StartDate); err != nil {
		return invalid("start_date %q must be YYYY-MM-DD", s.StartDate)
	}
	if s.EmailDomain == "" || strings.Contains(s.EmailDomain, "@") {
		return invalid("email_domain %q is not a domain", s.EmailDomain)
	}
	if s.Variance < 0 || s.Variance > 0.5 {
		return invalid("variance must be between 0 and 0.5, got %v", s.Variance)
	}

	e := c.Engine
	if e.MaxAttempts < 1 {
		return invalid("max_attempts must be at least 1, got %d", e.MaxAttempts)
	}
	if e.MinSessionTime < 1 {
		return invalid("min_session_time must be at least 1, got %d", e.MinSessionTime)
	}
	if e.ProgressThreshold <= 0 || e.ProgressThreshold > 1 {
		return invalid("progress_threshold must be in (0,1], got %v", e.ProgressThreshold)
	}
	if e.PassingScore < 0 || e.PassingScore > 100 {
		return invalid("passing_score must be between 0 and 100, got %d", e.PassingScore)
	}

	ss := c.Session
	if ss.MinDuration <= 0 || ss.MinDuration > ss.MaxDuration {
		return invalid("session durations must satisfy 0 < min <= max, got %d..%d", ss.MinDuration, ss.MaxDuration)
	}
	if ss.MinDuration < e.MinSessionTime {
		return invalid("min_duration %d is shorter than min_session_time %d", ss.MinDuration, e.MinSessionTime)
	}
	if ss.MinPerWeek < 1 || ss.MinPerWeek > ss.MaxPerWeek || ss.MaxPerWeek > 7 {
		return invalid("sessions per week must satisfy 1 <= min <= max <= 7, got %d..%d", ss.MinPerWeek, ss.MaxPerWeek)
	}
	if ss.EarliestHour < 0 || ss.EarliestHour > ss.LatestHour || ss.LatestHour > 23 {
		return invalid("session hours must satisfy 0 <= earliest <= latest <= 23, got %d..%d", ss.EarliestHour, ss.LatestHour)
	}

	x := c.XAPI
	v := x.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Compare(v, "v1.0.0") < 0 || semver.Major(v) != "v1" {
		return invalid("xapi version %q must be a 1.x semantic version", x.Version)
	}
	if _, err := mail.ParseAddress(x.InstructorMailbox); err != nil {
		return invalid("instructor_mailbox %q: %v", x.InstructorMailbox, err)
	}
	if !strings.HasPrefix(x.IRIBase, "http://") && !strings.HasPrefix(x.IRIBase, "https://") {
		return invalid("iri_base %q must be an http(s) IRI", x.IRIBase)
	}
	if x.BatchSize <= 0 {
		return invalid("batch_size must be positive, got %d", x.BatchSize)
	}

	if c.LRS.Timeout < 0 {
		return invalid("lrs timeout must be non-negative, got %v", c.LRS.Timeout)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return invalid("log level %q (valid: debug, info, warn, error)", c.Logging.Level)
	}
	validModes := map[string]bool{"": true, "dev": true, "prod": true}
	if !validModes[c.Logging.Mode] {
		return invalid("log mode %q (valid: dev, prod)", c.Logging.Mode)
	}
	return nil
}

// StartTime returns the simulation start date at midnight UTC.
func (c *Config) StartTime() (time.Time, error) {
	t, err := time.Parse(dateLayout, c.Simulation.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start_date: %w", err)
	}
	return t.UTC(), nil
}

// ProfileConfig returns the population generator settings.
func (c *Config) ProfileConfig() profile.Config {
	pc := profile.DefaultConfig()
	pc.Variance = c.Simulation.Variance
	pc.EmailDomain = c.Simulation.EmailDomain
	return pc
}

// ProgressConfig returns the engine settings.
func (c *Config) ProgressConfig() progress.Config {
	return progress.Config{
		MaxAttempts:       c.Engine.MaxAttempts,
		MinSessionTime:    c.Engine.MinSessionTime,
		ProgressThreshold: c.Engine.ProgressThreshold,
		PassingScore:      c.Engine.PassingScore,
	}
}

// SessionConfig returns the scheduler settings.
func (c *Config) SessionConfig() session.Config {
	return session.Config(c.Session)
}

// SerializerConfig returns the statement stamping settings.
func (c *Config) SerializerConfig() xapi.Config {
	return xapi.Config{
		Version:           c.XAPI.Version,
		IRIBase:           c.XAPI.IRIBase,
		InstructorName:    c.XAPI.InstructorName,
		InstructorMailbox: c.XAPI.InstructorMailbox,
		Language:          c.XAPI.Language,
		Platform:          c.XAPI.Platform,
	}
}

// LRSClientConfig returns the LRS client settings.
func (c *Config) LRSClientConfig() lrs.Config {
	return lrs.Config{
		Endpoint: c.LRS.Endpoint,
		Username: c.LRS.Username,
		Password: c.LRS.Password,
		Timeout:  c.LRS.Timeout,
		Version:  c.XAPI.Version,
	}
}

// LoggerOptions returns the logger settings.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:   c.Logging.Mode,
		Level:  c.Logging.Level,
		Redact: c.Logging.Redact,
	}
}

// applyEnvOverrides applies LEARNSIM_* environment variables.
func applyEnvOverrides(c *Config) error {
	ints := map[string]*int{
		"LEARNSIM_LEARNERS":     &c.Simulation.Learners,
		"LEARNSIM_WEEKS":        &c.Simulation.Weeks,
		"LEARNSIM_MAX_ATTEMPTS": &c.Engine.MaxAttempts,
		"LEARNSIM_BATCH_SIZE":   &c.XAPI.BatchSize,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"LEARNSIM_START_DATE":         &c.Simulation.StartDate,
		"LEARNSIM_EMAIL_DOMAIN":       &c.Simulation.EmailDomain,
		"LEARNSIM_COURSE_FILE":        &c.Simulation.CourseFile,
		"LEARNSIM_VERBS_FILE":         &c.Simulation.VerbsFile,
		"LEARNSIM_XAPI_VERSION":       &c.XAPI.Version,
		"LEARNSIM_INSTRUCTOR_MAILBOX": &c.XAPI.InstructorMailbox,
		"LEARNSIM_DB":                 &c.Store.DSN,
		"LEARNSIM_LRS_ENDPOINT":       &c.LRS.Endpoint,
		"LEARNSIM_LRS_USERNAME":       &c.LRS.Username,
		"LEARNSIM_LRS_PASSWORD":       &c.LRS.Password,
		"LEARNSIM_LOG_LEVEL":          &c.Logging.Level,
		"LEARNSIM_LOG_MODE":           &c.Logging.Mode,
		"LEARNSIM_METRICS_FILE":       &c.Metrics.File,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("LEARNSIM_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LEARNSIM_SEED: %w", err)
		}
		c.Simulation.Seed = n
	}
	if v := os.Getenv("LEARNSIM_LRS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LEARNSIM_LRS_TIMEOUT: %w", err)
		}
		c.LRS.Timeout = d
	}
	if v := os.Getenv("LEARNSIM_VALIDATE"); v != "" {
		c.XAPI.Validate = v == "true" || v == "1"
	}
	if v := os.Getenv("LEARNSIM_LOG_REDACT"); v != "" {
		c.Logging.Redact = v == "true" || v == "1"
	}
	return nil
}
