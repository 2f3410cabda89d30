package worklog

import (
	"time"

	"daybook/internal/clock"
)

// CommittedEntry is an already-persisted entry in the work-log system. It
// is fetched fresh per reconciliation pass and never mutated locally.
type CommittedEntry struct {
	ID              int64
	TicketKey       string
	StartTime       string // "HH:MM"
	DurationSeconds int
	Description     string
}

// Interval resolves the entry to a minute interval within its day.
func (e CommittedEntry) Interval() (clock.Interval, error) {
	start, err := clock.ToMinutes(e.StartTime)
	if err != nil {
		return clock.Interval{}, err
	}
	return clock.Interval{Start: start, End: start + (e.DurationSeconds+30)/60}, nil
}

// EndTime returns the entry's end clock time, clamped at 23:59.
func (e CommittedEntry) EndTime() (string, error) {
	return clock.EndTime(e.StartTime, e.DurationSeconds, false)
}

// EntryRequest is the write shape sent to the work-log system when a block
// is logged or an existing entry is edited.
type EntryRequest struct {
	TicketKey       string
	Day             time.Time
	StartTime       string // "HH:MM"
	DurationSeconds int
	Description     string
}
