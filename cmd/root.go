package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/config"
	"github.com/abhisek/learnsim/internal/logger"
	"github.com/abhisek/learnsim/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "learnsim",
	Short:         "Synthetic xAPI learning-activity simulator",
	Long:          "learnsim simulates a population of learners working through a course and emits the resulting xAPI statements.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file or postgres:// DSN (overrides LEARNSIM_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(verbsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config and LEARNSIM_* variables and applies
// --log-level. The result is not validated.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// resolveDBPath returns the database location using --db (highest
// priority), then the configured DSN or LEARNSIM_DB, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Store.DSN != "" {
		return cfg.Store.DSN, store.EnsureDir(cfg.Store.DSN)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	dsn, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// loadCatalogs returns the configured course and verb vocabulary, falling
// back to the bundled ones.
func loadCatalogs(cfg *config.Config) (*catalog.Course, *catalog.VerbCatalog, error) {
	course := catalog.DemoCourse()
	if f := cfg.Simulation.CourseFile; f != "" {
		c, err := catalog.LoadCourse(f)
		if err != nil {
			return nil, nil, fmt.Errorf("load course: %w", err)
		}
		course = c
	}
	verbs := catalog.DefaultVerbs()
	if f := cfg.Simulation.VerbsFile; f != "" {
		v, err := catalog.LoadVerbs(f)
		if err != nil {
			return nil, nil, fmt.Errorf("load verbs: %w", err)
		}
		verbs = v
	}
	return course, verbs, nil
}
