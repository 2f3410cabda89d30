package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybook/internal/clock"
)

func TestCommittedEntryInterval(t *testing.T) {
	t.Parallel()

	entry := CommittedEntry{StartTime: "09:00", DurationSeconds: 3600}
	interval, err := entry.Interval()
	require.NoError(t, err)
	assert.Equal(t, clock.Interval{Start: 540, End: 600}, interval)

	// 45 leftover seconds round up to a full minute.
	entry = CommittedEntry{StartTime: "09:00", DurationSeconds: 645}
	interval, err = entry.Interval()
	require.NoError(t, err)
	assert.Equal(t, 551, interval.End)

	_, err = CommittedEntry{StartTime: "bad"}.Interval()
	assert.ErrorIs(t, err, clock.ErrParse)
}

func TestCommittedEntryEndTime(t *testing.T) {
	t.Parallel()

	end, err := CommittedEntry{StartTime: "09:00", DurationSeconds: 1800}.EndTime()
	require.NoError(t, err)
	assert.Equal(t, "09:30", end)

	end, err = CommittedEntry{StartTime: "23:45", DurationSeconds: 3600}.EndTime()
	require.NoError(t, err)
	assert.Equal(t, "23:59", end, "end of day clamps")
}
