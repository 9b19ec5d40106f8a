package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/rng"
	"github.com/abhisek/learnsim/internal/ui/components"
	"github.com/abhisek/learnsim/internal/ui/theme"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Generate learner profiles and show the persona distribution",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("learners") {
			cfg.Simulation.Learners, _ = f.GetInt("learners")
		}
		if f.Changed("seed") {
			cfg.Simulation.Seed, _ = f.GetUint64("seed")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		learners, err := profile.Generate(cfg.Simulation.Learners, cfg.ProfileConfig(), rng.New(cfg.Simulation.Seed))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := f.GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(learners)
		}

		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%d learners (requested %d)", len(learners), cfg.Simulation.Learners)))
		fmt.Fprintln(out)
		fmt.Fprintln(out, distributionTable(profile.Distribution(learners)).View())

		if save, _ := f.GetBool("save"); save {
			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SaveLearners(cmd.Context(), learners); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, theme.Hint.Render("Saved to store; run `learnsim generate --stored-learners` to simulate them."))
		}
		return nil
	},
}

func init() {
	profilesCmd.Flags().Int("learners", 0, "Number of learners (default from config)")
	profilesCmd.Flags().Uint64("seed", 0, "Random seed (default from config)")
	profilesCmd.Flags().Bool("json", false, "Print the profiles as JSON")
	profilesCmd.Flags().Bool("save", false, "Save the profiles to the store")
}

func distributionTable(report profile.Report) *components.Table {
	tbl := components.NewTable("Persona", "Count", "Share").AlignRight(1, 2)
	for _, p := range report.Personas() {
		s := report[p]
		tbl.AddRow(string(p), fmt.Sprint(s.Count), fmt.Sprintf("%.2f%%", s.Percentage))
	}
	tbl.AddRow("total", fmt.Sprint(report.Total()), "")
	return tbl
}
