package block

import "sort"

// MergeFeed combines a freshly fetched activity feed with the current
// working set. Feed blocks whose ids are excluded (absorbed into an
// aggregate) or already present in the working set (user edits win) are
// dropped. The result is ordered chronologically, working-set blocks
// included.
func MergeFeed(fetched, working []ActivityBlock, exclusions ExclusionSet) []ActivityBlock {
	known := make(map[string]struct{}, len(working))
	for _, b := range working {
		known[b.ID] = struct{}{}
	}

	merged := make([]ActivityBlock, 0, len(fetched)+len(working))
	for _, b := range fetched {
		if exclusions.Has(b.ID) {
			continue
		}
		if _, exists := known[b.ID]; exists {
			continue
		}
		merged = append(merged, b)
	}
	merged = append(merged, working...)

	starts := make(map[string]int, len(merged))
	for _, b := range merged {
		if interval, err := b.Interval(); err == nil {
			starts[b.ID] = interval.Start
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return starts[merged[i].ID] < starts[merged[j].ID]
	})

	return merged
}
