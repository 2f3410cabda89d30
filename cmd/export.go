package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daybook/config"
	"daybook/internal/classify"
	"daybook/output"
	"daybook/reconcile"
	"daybook/storage"
)

var (
	exportDate    string
	exportMode    string
	exportOutput  string
	exportTimeout time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one day's reconciliation report to CSV or Excel",
	Example: `
  # CSV report
  daybook export --date 2026-03-02 --mode csv --output ./day.csv

  # Excel report
  daybook export --date 2026-03-02 --mode excel --output ./day.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, err := parseDayFlag(exportDate)
		if err != nil {
			return err
		}

		writer, err := output.WriterForFormat(exportMode)
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

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
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

		if err := writer.Write(exportOutput, rows); err != nil {
			return err
		}

		fmt.Printf(
			"Exported %d rows for %s to %s (new=%d partial=%d logged=%d conflicts=%d)\n",
			summary.Total, day.Format(dayFlagLayout), exportOutput,
			summary.New, summary.Partial, summary.Logged, summary.Conflicts,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDate, "date", "", "Day to export, format YYYY-MM-DD (default: today)")
	exportCmd.Flags().StringVar(&exportMode, "mode", "csv", "Output format: csv or excel")
	exportCmd.Flags().StringVar(&exportOutput, "output", "./daybook-report.csv", "Output file path")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 60*time.Second, "Timeout for feed and work-log reads")
}
