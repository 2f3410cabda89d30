// Package clock converts between HH:MM clock strings and minute offsets
// from midnight, and provides the half-open interval arithmetic the
// reconciliation engine is built on.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var (
	// ErrParse marks a malformed or out-of-range clock time.
	ErrParse = errors.New("malformed clock time")

	// ErrInvalidInterval marks a non-positive duration where a positive
	// one is required.
	ErrInvalidInterval = errors.New("interval has no positive duration")
)

// Interval is a half-open [Start, End) span in minutes from midnight of a
// single calendar day. End may exceed a day boundary only transiently
// during arithmetic; callers clamp or wrap.
type Interval struct {
	Start int
	End   int
}

// Duration returns End - Start. A non-positive result means the interval
// carries no loggable time.
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// Overlaps reports whether two half-open intervals share any minute.
// Touching endpoints do not count.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && iv.End > other.Start
}

// Intersect returns the number of shared minutes, never negative.
func (iv Interval) Intersect(other Interval) int {
	low := iv.Start
	if other.Start > low {
		low = other.Start
	}
	high := iv.End
	if other.End < high {
		high = other.End
	}
	if high <= low {
		return 0
	}
	return high - low
}

// ToMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds of 30 or more round up to the next minute.
func ToMinutes(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("parse clock time %q: %w", value, ErrParse)
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("parse clock time %q: hour out of range: %w", value, ErrParse)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("parse clock time %q: minute out of range: %w", value, ErrParse)
	}

	total := hour*60 + minute
	if len(parts) == 3 {
		second, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || second < 0 || second > 59 {
			return 0, fmt.Errorf("parse clock time %q: second out of range: %w", value, ErrParse)
		}
		if second >= 30 {
			total++
		}
	}

	return total, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EndTime computes the clock time durationSeconds after start. Durations
// round to the nearest minute. Without wrap, spans that would cross
// midnight clamp at 23:59; with wrap they continue into the next day.
func EndTime(start string, durationSeconds int, wrap bool) (string, error) {
	startMinutes, err := ToMinutes(start)
	if err != nil {
		return "", err
	}
	if durationSeconds < 0 {
		return "", fmt.Errorf("negative duration %ds: %w", durationSeconds, ErrInvalidInterval)
	}

	total := startMinutes + (durationSeconds+30)/60
	if total >= minutesPerDay {
		if wrap {
			total %= minutesPerDay
		} else {
			total = minutesPerDay - 1
		}
	}
	return FormatMinutes(total), nil
}

// DurationMinutes returns end - start in minutes. The result may be zero
// or negative; callers requiring loggable time must reject those values.
func DurationMinutes(start, end string) (int, error) {
	startMinutes, err := ToMinutes(start)
	if err != nil {
		return 0, err
	}
	endMinutes, err := ToMinutes(end)
	if err != nil {
		return 0, err
	}
	return endMinutes - startMinutes, nil
}

// ParseInterval builds an Interval from start/end clock strings.
func ParseInterval(start, end string) (Interval, error) {
	startMinutes, err := ToMinutes(start)
	if err != nil {
		return Interval{}, err
	}
	endMinutes, err := ToMinutes(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: startMinutes, End: endMinutes}, nil
}
