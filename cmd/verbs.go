package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/ui/components"
	"github.com/abhisek/learnsim/internal/ui/theme"
	"github.com/abhisek/learnsim/internal/xapi"
)

var verbsCmd = &cobra.Command{
	Use:   "verbs",
	Short: "Print the resolved verb vocabulary",
	Long:  "Print how each event kind maps to a verb IRI. Kinds missing from the vocabulary use the ADL fallback.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if f, _ := cmd.Flags().GetString("verbs"); f != "" {
			cfg.Simulation.VerbsFile = f
		}
		_, verbs, err := loadCatalogs(cfg)
		if err != nil {
			return err
		}

		s := xapi.NewSerializer(cfg.SerializerConfig(), verbs, nil)
		tbl := components.NewTable("Kind", "Verb IRI", "Source")
		fallbacks := 0
		for _, k := range events.AllKinds() {
			source := "vocabulary"
			if _, ok := verbs.Lookup(string(k)); !ok {
				source = "fallback"
				fallbacks++
			}
			tbl.AddRow(string(k), s.ResolveVerb(k).ID, source)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tbl.View())
		fmt.Fprintln(out)
		fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d from vocabulary, %d fallback", verbs.Len(), fallbacks)))
		return nil
	},
}

func init() {
	verbsCmd.Flags().String("verbs", "", "Verb vocabulary YAML/JSON file")
}
