// Package reconcile combines the day's activity blocks with the
// authoritative work-log and classifies every block. It mutates nothing
// and performs no writes; callers decide what to submit.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daybook/block"
	"daybook/internal/classify"
	"daybook/worklog"
)

// EntryReader fetches committed entries for one day from the work-log
// system.
type EntryReader interface {
	GetDayEntries(ctx context.Context, day time.Time) ([]worklog.CommittedEntry, error)
}

// EntryWriter creates or updates an entry in the work-log system.
type EntryWriter interface {
	CreateEntry(ctx context.Context, req worklog.EntryRequest) (int64, error)
	UpdateEntry(ctx context.Context, entryID int64, req worklog.EntryRequest) error
}

// Row pairs a working-set block with its classification.
type Row struct {
	Block   block.ActivityBlock
	Verdict classify.Verdict
}

// Summary counts the day's rows per status.
type Summary struct {
	Total          int
	New            int
	Partial        int
	Logged         int
	Conflicts      int
	TrackedMinutes int
	OverlapMinutes int
}

// ReconcileDay classifies every block against the committed entries using
// the given thresholds. Blocks and entries are taken as already fetched;
// the result depends on nothing else.
func ReconcileDay(blocks []block.ActivityBlock, entries []worklog.CommittedEntry, thresholds classify.Thresholds) ([]Row, Summary, error) {
	rows := make([]Row, 0, len(blocks))
	summary := Summary{Total: len(blocks)}

	for _, b := range blocks {
		candidate, err := b.Interval()
		if err != nil {
			return nil, Summary{}, fmt.Errorf("reconcile block %s: %w", b.ID, err)
		}

		verdict, err := classify.Classify(candidate, entries, thresholds)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("classify block %s: %w", b.ID, err)
		}

		rows = append(rows, Row{Block: b, Verdict: verdict})
		if duration := candidate.Duration(); duration > 0 {
			summary.TrackedMinutes += duration
			summary.OverlapMinutes += duration * verdict.Percent / 100
		}

		switch verdict.Status {
		case classify.StatusNew:
			summary.New++
		case classify.StatusPartial:
			summary.Partial++
		case classify.StatusLogged:
			summary.Logged++
		case classify.StatusConflict:
			summary.Conflicts++
		}
	}

	return rows, summary, nil
}

// BuildEntryRequest turns a resolved block into the write request for the
// work-log system. It validates but does not perform the call.
func BuildEntryRequest(b block.ActivityBlock, day time.Time) (worklog.EntryRequest, error) {
	ticket := strings.TrimSpace(b.SelectedTicket)
	if ticket == "" {
		return worklog.EntryRequest{}, fmt.Errorf("block %s has no ticket selected", b.ID)
	}
	if b.DurationSeconds <= 0 {
		return worklog.EntryRequest{}, fmt.Errorf("block %s has no positive duration", b.ID)
	}

	return worklog.EntryRequest{
		TicketKey:       ticket,
		Day:             day,
		StartTime:       b.StartTime,
		DurationSeconds: b.DurationSeconds,
		Description:     strings.TrimSpace(b.Title),
	}, nil
}
