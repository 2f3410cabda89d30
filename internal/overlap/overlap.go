// Package overlap detects which committed work-log entries overlap a
// candidate interval and how much of the candidate they cover.
package overlap

import (
	"fmt"

	"daybook/internal/clock"
	"daybook/worklog"
)

// Result describes how a candidate interval relates to a day's committed
// entries.
type Result struct {
	// Entries is the overlapping subset, in input order.
	Entries []worklog.CommittedEntry
	// Minutes is the uncapped sum of per-entry intersections. It can
	// exceed the candidate's duration when committed entries overlap
	// each other inside the candidate's span.
	Minutes int
	// Percent is the share of the candidate covered by committed
	// entries, capped at 100.
	Percent int
}

// Detect filters entries down to those overlapping the candidate and sums
// the overlapped minutes. A candidate without positive duration yields an
// empty result.
func Detect(candidate clock.Interval, entries []worklog.CommittedEntry) (Result, error) {
	duration := candidate.Duration()
	if duration <= 0 {
		return Result{}, nil
	}

	result := Result{Entries: make([]worklog.CommittedEntry, 0, len(entries))}
	for _, entry := range entries {
		entryInterval, err := entry.Interval()
		if err != nil {
			return Result{}, fmt.Errorf("resolve committed entry id=%d: %w", entry.ID, err)
		}
		shared := candidate.Intersect(entryInterval)
		if shared == 0 {
			continue
		}
		result.Entries = append(result.Entries, entry)
		result.Minutes += shared
	}

	result.Percent = coveragePercent(result.Minutes, duration)
	return result, nil
}

func coveragePercent(overlapMinutes, durationMinutes int) int {
	if overlapMinutes <= 0 || durationMinutes <= 0 {
		return 0
	}
	percent := (overlapMinutes*100 + durationMinutes/2) / durationMinutes
	if percent > 100 {
		percent = 100
	}
	return percent
}
