package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"daybook/config"
	"daybook/internal/classify"
	"daybook/reconcile"
	"daybook/storage"
)

var (
	statusDate    string
	statusTimeout time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the reconciliation table for one day",
	Long: `Fetch the day's activity feed and committed work-log entries, merge the
working set (stored aggregates and edits included, absorbed originals
excluded), and classify every block.

Statuses:
- Not logged:        no committed entry overlaps the block
- Partially logged:  some coverage below the logged threshold
- Logged:            coverage at or above the logged threshold
- Conflict:          committed entries double-book inside the block's span`,
	Example: `
  # Today's table
  daybook status

  # A specific day
  daybook status --date 2026-03-02
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, err := parseDayFlag(statusDate)
		if err != nil {
			return err
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
		worklogClient, err := newWorklogClient(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		defer cancel()

		blocks, _, err := loadWorkingSet(ctx, feed, store, day)
		if err != nil {
			return err
		}

		entries, err := worklogClient.GetDayEntries(ctx, day)
		if err != nil {
			return err
		}

		thresholds := classify.Thresholds{
			LoggedPercent:        cfg.Reconcile.LoggedThresholdPercent,
			ConflictRatioPercent: cfg.Reconcile.ConflictRatioPercent,
		}
		rows, summary, err := reconcile.ReconcileDay(blocks, entries, thresholds)
		if err != nil {
			return err
		}

		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "ID\tSTART\tEND\tTITLE\tAPP\tTICKET\tSTATUS\tCOVERED")
		for _, row := range rows {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d%%\n",
				shortID(row.Block.ID),
				row.Block.StartTime,
				row.Block.EndTime,
				truncate(row.Block.Title, 40),
				row.Block.SourceApp,
				row.Block.SelectedTicket,
				row.Verdict.Status.Label(),
				row.Verdict.Percent,
			)
		}
		if err := writer.Flush(); err != nil {
			return err
		}

		fmt.Printf(
			"\nDay %s: blocks=%d new=%d partial=%d logged=%d conflicts=%d tracked=%dm covered=%dm\n",
			day.Format(dayFlagLayout),
			summary.Total,
			summary.New,
			summary.Partial,
			summary.Logged,
			summary.Conflicts,
			summary.TrackedMinutes,
			summary.OverlapMinutes,
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusDate, "date", "", "Day to reconcile, format YYYY-MM-DD (default: today)")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 60*time.Second, "Timeout for feed and work-log reads")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max-1] + "…"
}
