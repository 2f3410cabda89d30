// Package block models observed, not-yet-committed units of time and the
// reversible aggregation that merges several of them into one loggable
// block.
package block

import (
	"daybook/internal/clock"
)

// Origin tags how an activity block entered the working set.
type Origin string

const (
	// OriginRaw blocks come straight from the activity feed.
	OriginRaw Origin = "raw"
	// OriginManual blocks were created by the user.
	OriginManual Origin = "manual"
	// OriginAggregated blocks were produced by Aggregate and carry an
	// AggregationRecord.
	OriginAggregated Origin = "aggregated"
)

// ActivityBlock is one observed span of time awaiting reconciliation. The
// Aggregation pointer is set iff Origin is OriginAggregated; Disaggregate
// is total on that shape and rejects every other.
type ActivityBlock struct {
	ID              string
	StartTime       string // "HH:MM"
	EndTime         string // "HH:MM"
	DurationSeconds int
	Title           string
	SourceApp       string
	SelectedTicket  string
	Origin          Origin
	Aggregation     *AggregationRecord
}

// Interval resolves the block to a minute interval within its day.
func (b ActivityBlock) Interval() (clock.Interval, error) {
	return clock.ParseInterval(b.StartTime, b.EndTime)
}

// IsAggregated reports whether the block carries a reversible aggregation
// snapshot.
func (b ActivityBlock) IsAggregated() bool {
	return b.Origin == OriginAggregated && b.Aggregation != nil
}

// AggregationRecord snapshots the source blocks of an aggregate, in
// chronological order and verbatim, so disaggregation restores them
// exactly. Full block copies keep nested aggregates lossless too.
type AggregationRecord struct {
	Sources []ActivityBlock
}

// SourceIDs lists the original ids absorbed by the aggregate.
func (r AggregationRecord) SourceIDs() []string {
	ids := make([]string, 0, len(r.Sources))
	for _, source := range r.Sources {
		ids = append(ids, source.ID)
	}
	return ids
}

// ExclusionSet records original activity ids that were absorbed into an
// aggregation and must stay hidden when the raw feed is refreshed. It is
// an explicit value owned by the caller, not hidden package state.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from the given ids.
func NewExclusionSet(ids ...string) ExclusionSet {
	set := make(ExclusionSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s ExclusionSet) Add(id string) {
	s[id] = struct{}{}
}

func (s ExclusionSet) Remove(id string) {
	delete(s, id)
}

func (s ExclusionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the excluded ids in unspecified order.
func (s ExclusionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
