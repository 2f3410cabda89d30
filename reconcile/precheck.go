package reconcile

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/clock"
	"daybook/internal/overlap"
	"daybook/worklog"
)

// ConflictCheck is the advisory result of a pre-submission overlap check.
// A non-empty conflict list is a normal result, not an error; callers
// decide whether to warn or block.
type ConflictCheck struct {
	HasOverlap bool
	Conflicts  []worklog.CommittedEntry
}

// CheckConflict fetches the day's committed entries and reports every one
// that overlaps the candidate span. excludeEntryID (0 for none) skips the
// entry currently being edited so a no-op edit does not conflict with
// itself.
//
// Callers run this twice per submission: once interactively while the user
// edits time fields and once more synchronously right before the write.
// The second call bounds, but cannot eliminate, the staleness window; the
// write itself must still be prepared to fail server-side.
func CheckConflict(ctx context.Context, reader EntryReader, day time.Time, startTime, endTime string, excludeEntryID int64) (ConflictCheck, error) {
	candidate, err := clock.ParseInterval(startTime, endTime)
	if err != nil {
		return ConflictCheck{}, err
	}
	if candidate.Duration() <= 0 {
		return ConflictCheck{}, fmt.Errorf("candidate %s-%s: %w", startTime, endTime, clock.ErrInvalidInterval)
	}

	entries, err := reader.GetDayEntries(ctx, day)
	if err != nil {
		return ConflictCheck{}, fmt.Errorf("load committed entries for %s: %w", day.Format("2006-01-02"), err)
	}

	if excludeEntryID != 0 {
		filtered := make([]worklog.CommittedEntry, 0, len(entries))
		for _, entry := range entries {
			if entry.ID == excludeEntryID {
				continue
			}
			filtered = append(filtered, entry)
		}
		entries = filtered
	}

	detected, err := overlap.Detect(candidate, entries)
	if err != nil {
		return ConflictCheck{}, err
	}

	return ConflictCheck{
		HasOverlap: len(detected.Entries) > 0,
		Conflicts:  detected.Entries,
	}, nil
}
