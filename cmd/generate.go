package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/learnsim/internal/config"
	"github.com/abhisek/learnsim/internal/generator"
	"github.com/abhisek/learnsim/internal/lrs"
	"github.com/abhisek/learnsim/internal/metrics"
	"github.com/abhisek/learnsim/internal/store"
	"github.com/abhisek/learnsim/internal/ui/components"
	"github.com/abhisek/learnsim/internal/ui/theme"
	"github.com/abhisek/learnsim/internal/xapi"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Simulate learners and emit xAPI statements",
	Long: "Generate a learner population, simulate it week by week through the course and " +
		"write the resulting statements to the store, an LRS and/or a JSON file.",
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.Int("learners", 0, "Number of learners (default from config)")
	f.Int("weeks", 0, "Course length in weeks (default from config)")
	f.Uint64("seed", 0, "Random seed (default from config)")
	f.String("course", "", "Course catalog YAML/JSON file")
	f.String("verbs", "", "Verb vocabulary YAML/JSON file")
	f.String("lrs", "", "LRS endpoint to post statements to")
	f.String("out", "", "Write statements to this JSON file")
	f.Bool("no-store", false, "Do not write to the local store")
	f.Bool("stored-learners", false, "Simulate the learners saved in the store instead of generating new ones")
	f.Bool("quiet", false, "Hide the progress bar and summary")
}

// applyGenerateFlags copies explicitly set flags over the config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("learners") {
		cfg.Simulation.Learners, _ = f.GetInt("learners")
	}
	if f.Changed("weeks") {
		cfg.Simulation.Weeks, _ = f.GetInt("weeks")
	}
	if f.Changed("seed") {
		cfg.Simulation.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("course") {
		cfg.Simulation.CourseFile, _ = f.GetString("course")
	}
	if f.Changed("verbs") {
		cfg.Simulation.VerbsFile, _ = f.GetString("verbs")
	}
	if f.Changed("lrs") {
		cfg.LRS.Endpoint, _ = f.GetString("lrs")
	}
}

func generatorOptions(cfg *config.Config) (generator.Options, error) {
	start, err := cfg.StartTime()
	if err != nil {
		return generator.Options{}, err
	}
	return generator.Options{
		Seed:      cfg.Simulation.Seed,
		Learners:  cfg.Simulation.Learners,
		Weeks:     cfg.Simulation.Weeks,
		Start:     start,
		Profile:   cfg.ProfileConfig(),
		Progress:  cfg.ProgressConfig(),
		Session:   cfg.SessionConfig(),
		XAPI:      cfg.SerializerConfig(),
		BatchSize: cfg.XAPI.BatchSize,
		Validate:  cfg.XAPI.Validate,
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	course, verbs, err := loadCatalogs(cfg)
	if err != nil {
		return err
	}
	opts, err := generatorOptions(cfg)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	noStore, _ := cmd.Flags().GetBool("no-store")
	useStored, _ := cmd.Flags().GetBool("stored-learners")
	outPath, _ := cmd.Flags().GetString("out")
	errOut := cmd.ErrOrStderr()

	var st *store.Store
	if !noStore || useStored {
		st, err = openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	m := metrics.New()
	genOpts := []generator.Option{generator.WithLogger(log), generator.WithMetrics(m)}
	if !quiet {
		genOpts = append(genOpts, generator.WithProgress(func(pct float64) {
			bar := components.NewProgressBar("Simulating", pct, true, 60)
			fmt.Fprint(errOut, "\r"+bar.View())
		}))
	}
	g, err := generator.New(opts, course, verbs, genOpts...)
	if err != nil {
		return err
	}

	var res *generator.Result
	if useStored {
		learners, err := st.Learners(ctx)
		if err != nil {
			return err
		}
		res, err = g.RunLearners(ctx, learners)
		if err != nil {
			return err
		}
	} else {
		res, err = g.Run(ctx)
		if err != nil {
			return err
		}
	}
	if !quiet {
		fmt.Fprintln(errOut)
	}

	if outPath != "" {
		if err := writeStatements(outPath, res.Statements); err != nil {
			return err
		}
	}

	if st != nil && !noStore {
		if err := submitToStore(cmd, g, st, cfg, res, useStored); err != nil {
			return err
		}
	}

	if cfg.LRS.Endpoint != "" {
		client, err := lrs.New(cfg.LRSClientConfig(), lrs.WithLogger(log))
		if err != nil {
			return err
		}
		if _, err := g.Submit(ctx, client, "lrs", res.Statements); err != nil {
			return err
		}
	}

	if err := m.WriteTextfile(cfg.Metrics.File); err != nil {
		log.Warn("metrics export failed", "error", err)
	}

	if !quiet {
		printSummary(cmd.OutOrStdout(), res)
	}
	return nil
}

// submitToStore saves learners and statements and records the run as a
// submission.
func submitToStore(cmd *cobra.Command, g *generator.Generator, st *store.Store, cfg *config.Config, res *generator.Result, storedLearners bool) error {
	ctx := cmd.Context()
	sub := store.Submission{
		ID:        uuid.NewString(),
		Seed:      cfg.Simulation.Seed,
		Learners:  len(res.Learners),
		Target:    st.Dialect(),
		Status:    store.StatusRunning,
		StartedAt: time.Now(),
	}
	if cfg.LRS.Endpoint != "" {
		sub.Target += "+" + cfg.LRS.Endpoint
	}
	if err := st.SaveSubmission(ctx, sub); err != nil {
		return err
	}

	var err error
	if !storedLearners {
		err = st.SaveLearners(ctx, res.Learners)
	}
	if err == nil {
		sub.Statements, err = g.Submit(ctx, st, "store", res.Statements)
	}

	sub.FinishedAt = time.Now()
	sub.Status = store.StatusSucceeded
	if err != nil {
		sub.Status = store.StatusFailed
		sub.Error = err.Error()
	}
	if serr := st.SaveSubmission(ctx, sub); serr != nil && err == nil {
		err = serr
	}
	return err
}

func writeStatements(path string, statements []xapi.Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statements); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printSummary(w io.Writer, res *generator.Result) {
	fmt.Fprintln(w, theme.Title.Render("Simulation complete"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, distributionTable(res.Distribution()).View())
	fmt.Fprintln(w)

	outcomes := components.NewTable("Outcome", "Passes").AlignRight(1)
	for _, o := range []string{generator.OutcomePassed, generator.OutcomeFailed, generator.OutcomeExhausted, generator.OutcomePartial} {
		outcomes.AddRow(o, fmt.Sprint(res.Outcomes[o]))
	}
	fmt.Fprintln(w, outcomes.View())
	fmt.Fprintln(w)

	summary := fmt.Sprintf("%d learners, %d sessions, %d statements in %s",
		len(res.Learners), len(res.Sessions), len(res.Statements), res.Elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, theme.Summary.Render(summary))
	if res.Degraded > 0 {
		fmt.Fprintln(w, theme.Warning.Render(fmt.Sprintf("%d activity passes produced degraded traces", res.Degraded)))
	}
}
