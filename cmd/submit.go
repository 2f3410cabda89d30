package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"daybook/block"
	"daybook/config"
	"daybook/internal/clock"
	"daybook/reconcile"
	"daybook/storage"
	"daybook/worklog"
)

var (
	submitDate        string
	submitStart       string
	submitDuration    time.Duration
	submitTicket      string
	submitDescription string
	submitBlockID     string
	submitEntryID     int64
	submitTimeout     time.Duration
	submitDryRun      bool
	submitForce       bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Precheck and submit one entry to the work-log system",
	Long: `Build a work-log entry from flags or from a stored block, check it
against the day's committed entries, and submit it.

The conflict check runs twice: once up front so overlaps are reported
before anything happens, and once more immediately before the write to
bound the window in which an out-of-band entry could appear. A conflict
is advisory: --force writes anyway, and the work-log system itself may
still reject the entry server-side.`,
	Example: `
  # Submit a new entry from flags
  daybook submit --date 2026-03-02 --start 09:00 --duration 1h --ticket ABC-123 --description "standup + triage"

  # Submit a stored working-set block (keeps its ticket and times)
  daybook submit --date 2026-03-02 --block 7f3e2a18

  # Edit an existing entry without tripping over itself
  daybook submit --date 2026-03-02 --start 09:00 --duration 45m --ticket ABC-123 --entry 9917

  # Report conflicts without writing
  daybook submit --date 2026-03-02 --start 09:00 --duration 1h --ticket ABC-123 --dry-run
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, err := parseDayFlag(submitDate)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		worklogClient, err := newWorklogClient(cfg)
		if err != nil {
			return err
		}

		request, submittedBlock, err := buildSubmitRequest(store, day)
		if err != nil {
			return err
		}

		endTime, err := clock.EndTime(request.StartTime, request.DurationSeconds, false)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		check, err := reconcile.CheckConflict(ctx, worklogClient, day, request.StartTime, endTime, submitEntryID)
		if err != nil {
			return err
		}
		if check.HasOverlap {
			fmt.Printf(
				"Warning: %s-%s overlaps %d committed entr%s:\n%s\n",
				request.StartTime, endTime,
				len(check.Conflicts), pluralYIes(len(check.Conflicts)),
				formatConflicts(check.Conflicts),
			)
			if !submitDryRun && !submitForce {
				return fmt.Errorf("aborting: rerun with --force to submit despite the overlap")
			}
		}

		if submitDryRun {
			fmt.Printf(
				"Dry-run: would submit %s %s-%s (%ds) %q, overlaps=%d\n",
				request.TicketKey, request.StartTime, endTime,
				request.DurationSeconds, request.Description,
				len(check.Conflicts),
			)
			return nil
		}

		// Re-check right before the write; the first check may be stale
		// against out-of-band work-log activity.
		check, err = reconcile.CheckConflict(ctx, worklogClient, day, request.StartTime, endTime, submitEntryID)
		if err != nil {
			return err
		}
		if check.HasOverlap && !submitForce {
			return fmt.Errorf(
				"aborting: the work-log changed since the first check, %d entr%s now overlap%s\n%s",
				len(check.Conflicts), pluralYIes(len(check.Conflicts)),
				pluralS(len(check.Conflicts)),
				formatConflicts(check.Conflicts),
			)
		}

		var entryID int64
		if submitEntryID != 0 {
			if err := worklogClient.UpdateEntry(ctx, submitEntryID, request); err != nil {
				return err
			}
			entryID = submitEntryID
		} else {
			entryID, err = worklogClient.CreateEntry(ctx, request)
			if err != nil {
				return err
			}
		}

		if submittedBlock != nil {
			// The block leaves the editable set once logged; excluding
			// its id keeps the next feed refresh from resurrecting it.
			exclusions, err := store.LoadExclusions(day)
			if err != nil {
				return err
			}
			exclusions.Add(submittedBlock.ID)
			if err := store.ReplaceExclusions(day, exclusions); err != nil {
				return err
			}
			if err := store.DeleteBlock(day, submittedBlock.ID); err != nil && !errors.Is(err, storage.ErrBlockNotFound) {
				return err
			}
		}

		app := ""
		title := request.Description
		if submittedBlock != nil {
			app = submittedBlock.SourceApp
			title = submittedBlock.Title
		}
		if err := store.RecordUsage(app, title, request.TicketKey, "", time.Now()); err != nil {
			return err
		}

		fmt.Printf(
			"Submitted entry %d: %s %s-%s (%ds) %q\n",
			entryID, request.TicketKey, request.StartTime, endTime,
			request.DurationSeconds, request.Description,
		)
		return nil
	},
}

func buildSubmitRequest(store *storage.SQLiteStore, day time.Time) (worklog.EntryRequest, *block.ActivityBlock, error) {
	if strings.TrimSpace(submitBlockID) != "" {
		stored, err := store.GetBlock(day, strings.TrimSpace(submitBlockID))
		if err != nil {
			return worklog.EntryRequest{}, nil, err
		}
		if strings.TrimSpace(submitTicket) != "" {
			stored.SelectedTicket = submitTicket
		}
		request, err := reconcile.BuildEntryRequest(stored, day)
		if err != nil {
			return worklog.EntryRequest{}, nil, err
		}
		return request, &stored, nil
	}

	if strings.TrimSpace(submitStart) == "" || submitDuration <= 0 || strings.TrimSpace(submitTicket) == "" {
		return worklog.EntryRequest{}, nil, fmt.Errorf("either --block or all of --start/--duration/--ticket are required")
	}

	return worklog.EntryRequest{
		TicketKey:       strings.TrimSpace(submitTicket),
		Day:             day,
		StartTime:       strings.TrimSpace(submitStart),
		DurationSeconds: int(submitDuration.Seconds()),
		Description:     strings.TrimSpace(submitDescription),
	}, nil, nil
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitDate, "date", "", "Day to submit for, format YYYY-MM-DD (default: today)")
	submitCmd.Flags().StringVar(&submitStart, "start", "", "Entry start time, format HH:MM")
	submitCmd.Flags().DurationVar(&submitDuration, "duration", 0, "Entry duration (e.g. 45m, 1h30m)")
	submitCmd.Flags().StringVar(&submitTicket, "ticket", "", "Ticket key the entry is logged against")
	submitCmd.Flags().StringVar(&submitDescription, "description", "", "Entry description")
	submitCmd.Flags().StringVar(&submitBlockID, "block", "", "Submit a stored working-set block instead of flag values")
	submitCmd.Flags().Int64Var(&submitEntryID, "entry", 0, "Existing entry id to update (excluded from the conflict check)")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 60*time.Second, "Timeout per work-log operation")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Run the conflict check without writing")
	submitCmd.Flags().BoolVar(&submitForce, "force", false, "Submit even when the precheck reports overlaps")
}

func pluralS(n int) string {
	if n == 1 {
		return "s"
	}
	return ""
}

func pluralYIes(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
