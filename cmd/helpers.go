package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daybook/block"
	"daybook/config"
	"daybook/storage"
	"daybook/tempo"
	"daybook/tracker"
	"daybook/worklog"
)

const dayFlagLayout = "2006-01-02"

func parseDayFlag(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	day, err := time.ParseInLocation(dayFlagLayout, trimmed, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date value %q (expected YYYY-MM-DD)", value)
	}
	return day, nil
}

func newWorklogClient(cfg *config.Config) (*tempo.HTTPClient, error) {
	return tempo.NewClient(tempo.ClientConfig{
		BaseURL:   cfg.Worklog.URL,
		APIToken:  cfg.Worklog.Token,
		UserAgent: "daybook/1.0",
	})
}

func newTrackerClient(cfg *config.Config) (*tracker.HTTPClient, error) {
	return tracker.NewClient(tracker.ClientConfig{
		BaseURL:   cfg.Tracker.URL,
		UserAgent: "daybook/1.0",
	})
}

// loadWorkingSet pulls the day's activity feed, filters it through the
// persisted exclusion set, and merges the stored user blocks on top.
func loadWorkingSet(
	ctx context.Context,
	feed *tracker.HTTPClient,
	store *storage.SQLiteStore,
	day time.Time,
) ([]block.ActivityBlock, block.ExclusionSet, error) {
	fetched, err := feed.FetchDayBlocks(ctx, day)
	if err != nil {
		return nil, nil, err
	}

	stored, err := store.ListBlocks(day)
	if err != nil {
		return nil, nil, err
	}

	exclusions, err := store.LoadExclusions(day)
	if err != nil {
		return nil, nil, err
	}

	return block.MergeFeed(fetched, stored, exclusions), exclusions, nil
}

func formatConflicts(conflicts []worklog.CommittedEntry) string {
	lines := make([]string, 0, len(conflicts))
	for _, entry := range conflicts {
		end, err := entry.EndTime()
		if err != nil {
			end = "?"
		}
		lines = append(lines, fmt.Sprintf(
			"  %s-%s %s %q",
			entry.StartTime, end, entry.TicketKey, strings.TrimSpace(entry.Description),
		))
	}
	return strings.Join(lines, "\n")
}
