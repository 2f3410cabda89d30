package suggest

import (
	"context"
	"fmt"
)

// MappingSource resolves an explicit project-to-ticket mapping.
type MappingSource interface {
	LookupProjectMapping(ctx context.Context, project string) ([]Candidate, error)
}

// HistorySource matches an activity title against past logged activities.
type HistorySource interface {
	SearchTitleHistory(ctx context.Context, title string, limit int) ([]Candidate, error)
}

// RecencySource lists recently used tickets.
type RecencySource interface {
	RecentTickets(ctx context.Context, limit int) ([]Candidate, error)
}

// RejectionChecker counts recorded rejections for an
// (app, title prefix, ticket) pattern.
type RejectionChecker interface {
	RejectionCount(ctx context.Context, sourceApp, titlePrefix, ticketKey string) (int, error)
}

// Engine queries the three read-only suggestion sources and ranks their
// combined output for one activity.
type Engine struct {
	Mapping    MappingSource
	History    HistorySource
	Recency    RecencySource
	Rejections RejectionChecker

	// MinRejections is the number of recorded rejections for the same
	// app+title-prefix+ticket pattern that silences a candidate.
	MinRejections int
	// Limit truncates the ranked result; <= 0 returns everything.
	Limit int
}

// DefaultMinRejections silences a candidate after two explicit rejections
// of the same pattern.
const DefaultMinRejections = 2

// SuggestFor gathers candidates from every configured source and returns
// them ranked. Sources are optional; a nil source contributes nothing.
func (e *Engine) SuggestFor(ctx context.Context, activity Activity) ([]Candidate, error) {
	candidates := make([]Candidate, 0, 8)

	project := activity.Project
	if project == "" {
		project = ProjectHint(activity.Title)
	}
	if e.Mapping != nil && project != "" {
		mapped, err := e.Mapping.LookupProjectMapping(ctx, project)
		if err != nil {
			return nil, fmt.Errorf("project mapping lookup: %w", err)
		}
		candidates = append(candidates, mapped...)
	}

	if e.History != nil {
		matched, err := e.History.SearchTitleHistory(ctx, activity.Title, e.Limit)
		if err != nil {
			return nil, fmt.Errorf("title history lookup: %w", err)
		}
		candidates = append(candidates, matched...)
	}

	if e.Recency != nil {
		recent, err := e.Recency.RecentTickets(ctx, e.Limit)
		if err != nil {
			return nil, fmt.Errorf("recency lookup: %w", err)
		}
		candidates = append(candidates, recent...)
	}

	rejected, err := e.rejectionFilter(ctx, activity, candidates)
	if err != nil {
		return nil, err
	}

	return Rank(candidates, rejected, e.Limit), nil
}

func (e *Engine) rejectionFilter(ctx context.Context, activity Activity, candidates []Candidate) (func(Candidate) bool, error) {
	if e.Rejections == nil {
		return nil, nil
	}

	minRejections := e.MinRejections
	if minRejections <= 0 {
		minRejections = DefaultMinRejections
	}

	prefix := TitlePrefix(activity.Title)
	silenced := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if _, done := silenced[candidate.TicketKey]; done {
			continue
		}
		count, err := e.Rejections.RejectionCount(ctx, activity.SourceApp, prefix, candidate.TicketKey)
		if err != nil {
			return nil, fmt.Errorf("rejection lookup for %s: %w", candidate.TicketKey, err)
		}
		silenced[candidate.TicketKey] = count >= minRejections
	}

	return func(c Candidate) bool { return silenced[c.TicketKey] }, nil
}
