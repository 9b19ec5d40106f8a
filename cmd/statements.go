package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/events"
	"github.com/abhisek/learnsim/internal/lrs"
	"github.com/abhisek/learnsim/internal/ui/components"
	"github.com/abhisek/learnsim/internal/xapi"
)

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "List stored statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		_, verbs, err := loadCatalogs(cfg)
		if err != nil {
			return err
		}
		q, err := statementQuery(cmd, verbs)
		if err != nil {
			return err
		}

		var src xapi.Source
		if fromLRS, _ := cmd.Flags().GetBool("from-lrs"); fromLRS {
			client, err := lrs.New(cfg.LRSClientConfig())
			if err != nil {
				return err
			}
			src = client
		} else {
			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()
			src = st
		}

		stmts, err := src.QueryStatements(cmd.Context(), q)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stmts)
		}

		tbl := components.NewTable("Timestamp", "Actor", "Verb", "Object", "Result")
		for _, s := range stmts {
			verb, ok := verbs.NameOf(s.Verb.ID)
			if !ok {
				verb = s.Verb.ID
			}
			tbl.AddRow(
				s.Timestamp.UTC().Format(time.RFC3339),
				strings.TrimPrefix(s.Actor.Mbox, "mailto:"),
				verb,
				objectLabel(s.Object),
				resultLabel(s.Result),
			)
		}
		fmt.Fprintln(out, tbl.View())
		fmt.Fprintf(out, "\n%d statements\n", tbl.Len())
		return nil
	},
}

func init() {
	f := statementsCmd.Flags()
	f.String("actor", "", "Filter by learner email")
	f.String("verb", "", "Filter by verb name (e.g. completed) or IRI")
	f.String("activity", "", "Filter by activity IRI")
	f.String("registration", "", "Filter by session registration")
	f.String("since", "", "Only statements at or after this time (RFC 3339 or YYYY-MM-DD)")
	f.String("until", "", "Only statements at or before this time (RFC 3339 or YYYY-MM-DD)")
	f.Int("limit", 20, "Maximum statements to list (0 = all)")
	f.Bool("json", false, "Print statements as JSON")
	f.Bool("from-lrs", false, "Query the configured LRS instead of the store")
}

func statementQuery(cmd *cobra.Command, verbs *catalog.VerbCatalog) (xapi.Query, error) {
	f := cmd.Flags()
	var q xapi.Query
	q.Actor, _ = f.GetString("actor")
	q.ActivityID, _ = f.GetString("activity")
	q.Registration, _ = f.GetString("registration")
	q.Limit, _ = f.GetInt("limit")

	if verb, _ := f.GetString("verb"); verb != "" {
		q.VerbID = verbIRI(verb, verbs)
	}
	for _, bound := range []struct {
		flag string
		dst  *time.Time
	}{{"since", &q.Since}, {"until", &q.Until}} {
		v, _ := f.GetString(bound.flag)
		if v == "" {
			continue
		}
		t, err := parseTimeFlag(v)
		if err != nil {
			return q, fmt.Errorf("--%s: %w", bound.flag, err)
		}
		*bound.dst = t
	}
	return q, nil
}

// verbIRI resolves a verb name through the vocabulary, using the ADL
// fallback IRI for names it lacks. IRIs pass through unchanged.
func verbIRI(verb string, verbs *catalog.VerbCatalog) string {
	if strings.Contains(verb, "://") {
		return verb
	}
	s := xapi.NewSerializer(xapi.DefaultConfig(), verbs, nil)
	return s.ResolveVerb(events.Kind(strings.ToLower(verb))).ID
}

func parseTimeFlag(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", v)
	}
	return t, nil
}

func objectLabel(o xapi.Object) string {
	if o.Definition != nil {
		for _, name := range o.Definition.Name {
			return name
		}
	}
	return o.ID
}

func resultLabel(r *xapi.Result) string {
	if r == nil {
		return ""
	}
	var parts []string
	if r.Score != nil {
		parts = append(parts, fmt.Sprintf("score %.0f/%.0f", r.Score.Raw, r.Score.Max))
	}
	if r.Success != nil {
		parts = append(parts, fmt.Sprintf("success=%t", *r.Success))
	}
	if r.Duration != "" {
		parts = append(parts, r.Duration)
	}
	return strings.Join(parts, " ")
}
