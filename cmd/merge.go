package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daybook/block"
	"daybook/config"
	"daybook/storage"
)

var (
	mergeDate    string
	mergeIDs     []string
	mergeTimeout time.Duration
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge tracked blocks into one loggable block",
	Long: `Aggregate two or more working-set blocks into a single loggable block.

The aggregate spans from the earliest start to the latest end; its
duration is the sum of the input durations, so gaps between inputs are
absorbed without inflating logged time. The originals are snapshotted
inside the aggregate and hidden from future feed refreshes until the
aggregate is split again.`,
	Example: `
  # Merge three blocks observed on one day
  daybook merge --date 2026-03-02 --ids a1f4,b2c9,c3d1
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, err := parseDayFlag(mergeDate)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(mergeIDs))
		for _, id := range mergeIDs {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
		if len(ids) < 2 {
			return fmt.Errorf("--ids needs at least two block ids, got %d", len(ids))
		}

		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		feed, err := newTrackerClient(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), mergeTimeout)
		defer cancel()

		working, exclusions, err := loadWorkingSet(ctx, feed, store, day)
		if err != nil {
			return err
		}

		byID := make(map[string]block.ActivityBlock, len(working))
		for _, b := range working {
			byID[b.ID] = b
		}

		inputs := make([]block.ActivityBlock, 0, len(ids))
		for _, id := range ids {
			b, ok := byID[id]
			if !ok {
				return fmt.Errorf("block %s not found in the working set for %s", id, day.Format(dayFlagLayout))
			}
			inputs = append(inputs, b)
		}

		aggregate, err := block.Aggregate(inputs, exclusions)
		if err != nil {
			return err
		}

		if err := store.SaveBlock(day, aggregate); err != nil {
			return err
		}
		// Merged-away user blocks leave the stored set; raw originals
		// only ever lived in the feed and are covered by the exclusions.
		for _, input := range inputs {
			if input.Origin == block.OriginRaw {
				continue
			}
			if err := store.DeleteBlock(day, input.ID); err != nil {
				return err
			}
		}
		if err := store.ReplaceExclusions(day, exclusions); err != nil {
			return err
		}

		fmt.Printf(
			"Merged %d blocks into %s (%s-%s, %ds): %s\n",
			len(inputs),
			shortID(aggregate.ID),
			aggregate.StartTime,
			aggregate.EndTime,
			aggregate.DurationSeconds,
			truncate(aggregate.Title, 60),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeDate, "date", "", "Day the blocks belong to, format YYYY-MM-DD (default: today)")
	mergeCmd.Flags().StringSliceVar(&mergeIDs, "ids", nil, "Comma-separated block ids to merge (at least two)")
	mergeCmd.Flags().DurationVar(&mergeTimeout, "timeout", 60*time.Second, "Timeout for the feed read")
	_ = mergeCmd.MarkFlagRequired("ids")
}
