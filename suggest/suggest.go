// Package suggest ranks candidate ticket suggestions for an observed
// activity, merging signals from independent sources and resolving ties
// by source priority.
package suggest

import (
	"sort"
	"strings"
)

// Source identifies where a candidate came from. Priority order for tie
// breaks: explicit mapping > activity-title history > recency.
type Source string

const (
	SourceMapping Source = "mapping"
	SourceHistory Source = "history"
	SourceRecency Source = "recency"
)

func (s Source) priority() int {
	switch s {
	case SourceMapping:
		return 3
	case SourceHistory:
		return 2
	case SourceRecency:
		return 1
	default:
		return 0
	}
}

// Candidate is one suggested ticket with a source-assigned confidence in
// [0,1].
type Candidate struct {
	TicketKey  string
	TicketName string
	Confidence float64
	Reason     string
	Source     Source
}

// Activity is the query context a suggestion is requested for.
type Activity struct {
	SourceApp string
	Title     string
	Project   string
}

// titlePrefixLength bounds the rejection pattern key so small wording
// changes in long window titles still match earlier rejections.
const titlePrefixLength = 24

// TitlePrefix normalizes an activity title into the prefix used as the
// rejection pattern key.
func TitlePrefix(title string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(title)), " "))
	if len(normalized) > titlePrefixLength {
		normalized = normalized[:titlePrefixLength]
	}
	return normalized
}

// ProjectHint extracts a project name from "Project - rest" shaped titles,
// or returns "" when the title carries no such marker.
func ProjectHint(title string) string {
	head, _, found := strings.Cut(title, " - ")
	if !found {
		return ""
	}
	return strings.TrimSpace(head)
}

// Rank keeps the maximum-confidence candidate per unique ticket key,
// drops rejected candidates, and returns the rest sorted descending by
// confidence with source priority breaking ties. limit <= 0 disables
// truncation.
func Rank(candidates []Candidate, rejected func(Candidate) bool, limit int) []Candidate {
	best := make(map[string]Candidate, len(candidates))
	order := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		key := strings.TrimSpace(candidate.TicketKey)
		if key == "" {
			continue
		}
		current, exists := best[key]
		if !exists {
			best[key] = candidate
			order = append(order, key)
			continue
		}
		if candidate.Confidence > current.Confidence ||
			(candidate.Confidence == current.Confidence && candidate.Source.priority() > current.Source.priority()) {
			best[key] = candidate
		}
	}

	ranked := make([]Candidate, 0, len(order))
	for _, key := range order {
		candidate := best[key]
		if rejected != nil && rejected(candidate) {
			continue
		}
		ranked = append(ranked, candidate)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		if pi, pj := ranked[i].Source.priority(), ranked[j].Source.priority(); pi != pj {
			return pi > pj
		}
		return ranked[i].TicketKey < ranked[j].TicketKey
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
