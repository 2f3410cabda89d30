// Package classify turns overlap results into one of four reconciliation
// statuses for an observed activity block.
package classify

import (
	"daybook/internal/clock"
	"daybook/internal/overlap"
	"daybook/worklog"
)

// Status is the reconciliation state of a candidate interval against the
// day's committed entries.
type Status string

const (
	StatusNew      Status = "new"
	StatusPartial  Status = "partial"
	StatusLogged   Status = "logged"
	StatusConflict Status = "conflict"
)

// Label returns the human-facing name shown in tables and exports.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "Not logged"
	case StatusPartial:
		return "Partially logged"
	case StatusLogged:
		return "Logged"
	case StatusConflict:
		return "Conflict"
	default:
		return string(s)
	}
}

// Thresholds hold the tunable classification heuristics. The defaults
// match the historical behavior; deployments may adjust them via config.
type Thresholds struct {
	// LoggedPercent is the minimum coverage treated as fully logged.
	LoggedPercent int
	// ConflictRatioPercent scales the candidate duration before the
	// conflict comparison. At 100, committed entries overlapping each
	// other beyond the candidate's own span flag a conflict.
	ConflictRatioPercent int
}

// DefaultThresholds returns the stock 80% logged / 100% conflict tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{LoggedPercent: 80, ConflictRatioPercent: 100}
}

func (t Thresholds) normalized() Thresholds {
	if t.LoggedPercent <= 0 {
		t.LoggedPercent = 80
	}
	if t.ConflictRatioPercent <= 0 {
		t.ConflictRatioPercent = 100
	}
	return t
}

// Verdict is a classification outcome. It is derived purely from the
// candidate interval and the committed entries, never from session state.
type Verdict struct {
	Status      Status
	Percent     int
	Overlapping []worklog.CommittedEntry
}

// Classify maps a candidate interval and the day's committed entries to
// exactly one status. Order: degenerate duration, then no overlap, then
// the conflict rule, then the logged threshold.
func Classify(candidate clock.Interval, entries []worklog.CommittedEntry, thresholds Thresholds) (Verdict, error) {
	thresholds = thresholds.normalized()

	duration := candidate.Duration()
	if duration <= 0 {
		return Verdict{Status: StatusNew}, nil
	}

	detected, err := overlap.Detect(candidate, entries)
	if err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{Percent: detected.Percent, Overlapping: detected.Entries}
	switch {
	case len(detected.Entries) == 0:
		verdict.Status = StatusNew
	case len(detected.Entries) > 1 && detected.Minutes*100 > duration*thresholds.ConflictRatioPercent:
		verdict.Status = StatusConflict
	case detected.Percent >= thresholds.LoggedPercent:
		verdict.Status = StatusLogged
	default:
		verdict.Status = StatusPartial
	}
	return verdict, nil
}
