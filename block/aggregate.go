package block

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// descriptionSeparator keeps the sub-activity order readable in the
// synthesized title.
const descriptionSeparator = " → "

var (
	// ErrInvalidAggregation marks an aggregate call with fewer than two
	// blocks.
	ErrInvalidAggregation = errors.New("aggregation requires at least two blocks")

	// ErrNotAggregated marks a disaggregate call on a block without an
	// aggregation snapshot.
	ErrNotAggregated = errors.New("block is not an aggregate")
)

// Aggregate merges two or more blocks into one loggable block with full
// provenance. The result spans from the earliest start to the latest end;
// gaps between inputs are absorbed because the duration is the sum of the
// input durations, not the envelope width. Input ids are added to
// exclusions so a refreshed feed does not resurrect them. On any error the
// exclusion set is left untouched.
func Aggregate(blocks []ActivityBlock, exclusions ExclusionSet) (ActivityBlock, error) {
	if len(blocks) < 2 {
		return ActivityBlock{}, fmt.Errorf("got %d block(s): %w", len(blocks), ErrInvalidAggregation)
	}

	sorted := append([]ActivityBlock(nil), blocks...)
	starts := make(map[string]int, len(sorted))
	for _, b := range sorted {
		interval, err := b.Interval()
		if err != nil {
			return ActivityBlock{}, fmt.Errorf("aggregate block %s: %w", b.ID, err)
		}
		starts[b.ID] = interval.Start
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return starts[sorted[i].ID] < starts[sorted[j].ID]
	})

	first := sorted[0]
	envelope, err := first.Interval()
	if err != nil {
		return ActivityBlock{}, err
	}
	totalSeconds := 0
	titles := make([]string, 0, len(sorted))
	ticket := ""

	for _, b := range sorted {
		interval, _ := b.Interval()
		if interval.Start < envelope.Start {
			envelope.Start = interval.Start
		}
		if interval.End > envelope.End {
			envelope.End = interval.End
		}
		totalSeconds += b.DurationSeconds
		if title := strings.TrimSpace(b.Title); title != "" {
			titles = append(titles, title)
		}
		if ticket == "" && strings.TrimSpace(b.SelectedTicket) != "" {
			ticket = b.SelectedTicket
		}
	}

	record := &AggregationRecord{Sources: make([]ActivityBlock, len(sorted))}
	copy(record.Sources, sorted)

	aggregate := ActivityBlock{
		ID:              uuid.NewString(),
		StartTime:       first.StartTime,
		EndTime:         sorted[len(sorted)-1].EndTime,
		DurationSeconds: totalSeconds,
		Title:           strings.Join(titles, descriptionSeparator),
		SourceApp:       first.SourceApp,
		SelectedTicket:  ticket,
		Origin:          OriginAggregated,
		Aggregation:     record,
	}

	// Envelope end is the latest end, which is not necessarily the last
	// block's end when spans nest.
	for _, b := range sorted {
		interval, _ := b.Interval()
		if interval.End == envelope.End {
			aggregate.EndTime = b.EndTime
		}
	}

	if exclusions != nil {
		for _, b := range sorted {
			exclusions.Add(b.ID)
		}
	}

	return aggregate, nil
}

// Disaggregate restores the exact source blocks of an aggregate and
// removes their ids from the exclusion set. Re-aggregating the result
// reproduces an equivalent aggregate under a fresh id.
func Disaggregate(aggregate ActivityBlock, exclusions ExclusionSet) ([]ActivityBlock, error) {
	if !aggregate.IsAggregated() || len(aggregate.Aggregation.Sources) == 0 {
		return nil, fmt.Errorf("block %s: %w", aggregate.ID, ErrNotAggregated)
	}

	restored := make([]ActivityBlock, len(aggregate.Aggregation.Sources))
	copy(restored, aggregate.Aggregation.Sources)

	if exclusions != nil {
		for _, b := range restored {
			exclusions.Remove(b.ID)
		}
	}

	return restored, nil
}
