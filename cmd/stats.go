package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/ui/components"
	"github.com/abhisek/learnsim/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored statement statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		_, verbs, err := loadCatalogs(cfg)
		if err != nil {
			return err
		}
		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		total, err := st.CountStatements(ctx)
		if err != nil {
			return err
		}
		counts, err := st.VerbCounts(ctx)
		if err != nil {
			return err
		}
		learners, err := st.Learners(ctx)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("submissions")
		subs, err := st.Submissions(ctx, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%d statements, %d learners", total, len(learners))))
		fmt.Fprintln(out)

		if len(learners) > 0 {
			fmt.Fprintln(out, distributionTable(profile.Distribution(learners)).View())
			fmt.Fprintln(out)
		}

		vt := components.NewTable("Verb", "Statements").AlignRight(1)
		for _, c := range counts {
			name, ok := verbs.NameOf(c.VerbID)
			if !ok {
				name = c.VerbID
			}
			vt.AddRow(name, fmt.Sprint(c.Count))
		}
		fmt.Fprintln(out, vt.View())
		fmt.Fprintln(out)

		stbl := components.NewTable("Started", "Seed", "Learners", "Statements", "Status", "Target").AlignRight(1, 2, 3)
		for _, s := range subs {
			status := s.Status
			if s.Error != "" {
				status += ": " + s.Error
			}
			stbl.AddRow(s.StartedAt.Local().Format(time.DateTime), fmt.Sprint(s.Seed),
				fmt.Sprint(s.Learners), fmt.Sprint(s.Statements), status, s.Target)
		}
		fmt.Fprintln(out, stbl.View())
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("submissions", 10, "Number of recent submissions to show (0 = all)")
}
