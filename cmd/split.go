package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"daybook/block"
	"daybook/config"
	"daybook/storage"
)

var (
	splitDate string
	splitID   string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split an aggregate back into its original blocks",
	Long: `Restore the exact source blocks of an aggregate: same ids, times,
titles, apps, and durations. The restored ids leave the exclusion set, so
the next feed refresh shows the originals again, and any restored user
blocks return to the stored working set.`,
	Example: `
  daybook split --date 2026-03-02 --id 7f3e2a18
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, err := parseDayFlag(splitDate)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		aggregate, err := store.GetBlock(day, splitID)
		if err != nil {
			return err
		}

		exclusions, err := store.LoadExclusions(day)
		if err != nil {
			return err
		}

		restored, err := block.Disaggregate(aggregate, exclusions)
		if err != nil {
			return err
		}

		for _, b := range restored {
			if b.Origin == block.OriginRaw {
				continue
			}
			if err := store.SaveBlock(day, b); err != nil {
				return err
			}
		}
		if err := store.DeleteBlock(day, aggregate.ID); err != nil {
			return err
		}
		if err := store.ReplaceExclusions(day, exclusions); err != nil {
			return err
		}

		fmt.Printf("Split %s into %d original blocks:\n", shortID(aggregate.ID), len(restored))
		for _, b := range restored {
			fmt.Printf("  %s %s-%s %q\n", shortID(b.ID), b.StartTime, b.EndTime, truncate(b.Title, 50))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVar(&splitDate, "date", "", "Day the aggregate belongs to, format YYYY-MM-DD (default: today)")
	splitCmd.Flags().StringVar(&splitID, "id", "", "Id of the aggregated block to split")
	_ = splitCmd.MarkFlagRequired("id")
}
