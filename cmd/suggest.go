package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daybook/config"
	"daybook/storage"
	"daybook/suggest"
)

var (
	suggestApp     string
	suggestTitle   string
	suggestProject string
	suggestLimit   int
	suggestReject  string
	suggestTimeout time.Duration
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank ticket suggestions for an observed activity",
	Long: `Query the three suggestion sources (explicit project mapping, past
activity titles, recently used tickets), keep the best confidence per
ticket, and rank the rest. Candidates rejected often enough for the same
app and title pattern stay hidden.

--reject records one rejection for a ticket under the given app+title
pattern instead of listing suggestions.`,
	Example: `
  daybook suggest --app "IntelliJ" --title "payments - fix flaky import test"

  # Record that ABC-99 was a bad suggestion for this pattern
  daybook suggest --app "IntelliJ" --title "payments - fix flaky import test" --reject ABC-99
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if strings.TrimSpace(suggestReject) != "" {
			prefix := suggest.TitlePrefix(suggestTitle)
			if err := store.RecordRejection(suggestApp, prefix, suggestReject); err != nil {
				return err
			}
			fmt.Printf("Recorded rejection of %s for app=%q pattern=%q\n", suggestReject, suggestApp, prefix)
			return nil
		}

		limit := suggestLimit
		if limit <= 0 {
			limit = cfg.Suggest.Limit
		}
		engine := &suggest.Engine{
			Mapping:       store,
			History:       store,
			Recency:       store,
			Rejections:    store,
			MinRejections: cfg.Suggest.RejectionThreshold,
			Limit:         limit,
		}

		ctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
		defer cancel()

		candidates, err := engine.SuggestFor(ctx, suggest.Activity{
			SourceApp: suggestApp,
			Title:     suggestTitle,
			Project:   suggestProject,
		})
		if err != nil {
			return err
		}

		if len(candidates) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}

		for i, candidate := range candidates {
			name := candidate.TicketName
			if name != "" {
				name = " " + name
			}
			fmt.Printf(
				"%d. %s%s (%.0f%%, %s) - %s\n",
				i+1, candidate.TicketKey, name,
				candidate.Confidence*100, candidate.Source, candidate.Reason,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVar(&suggestApp, "app", "", "Source application of the activity")
	suggestCmd.Flags().StringVar(&suggestTitle, "title", "", "Activity title to suggest tickets for")
	suggestCmd.Flags().StringVar(&suggestProject, "project", "", "Project name override (default: derived from the title)")
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 0, "Maximum suggestions to show (default: config value)")
	suggestCmd.Flags().StringVar(&suggestReject, "reject", "", "Record a rejection of this ticket key for the app+title pattern")
	suggestCmd.Flags().DurationVar(&suggestTimeout, "timeout", 30*time.Second, "Timeout for suggestion lookups")
	_ = suggestCmd.MarkFlagRequired("title")
}
