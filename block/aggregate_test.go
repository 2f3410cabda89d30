package block

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawBlock(id, start, end string, durationSeconds int, title string) ActivityBlock {
	return ActivityBlock{
		ID:              id,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: durationSeconds,
		Title:           title,
		SourceApp:       "tracker",
		Origin:          OriginRaw,
	}
}

func TestAggregateSumsDurationsAcrossGaps(t *testing.T) {
	t.Parallel()

	// 10 + 15 + 20 minutes with a 5-minute gap before the third block.
	inputs := []ActivityBlock{
		rawBlock("a", "09:00", "09:10", 600, "standup"),
		rawBlock("b", "09:10", "09:25", 900, "review"),
		rawBlock("c", "09:30", "09:50", 1200, "bugfix"),
	}
	exclusions := NewExclusionSet()

	aggregate, err := Aggregate(inputs, exclusions)
	require.NoError(t, err)

	assert.Equal(t, 2700, aggregate.DurationSeconds, "gaps must not inflate the duration")
	assert.Equal(t, "09:00", aggregate.StartTime)
	assert.Equal(t, "09:50", aggregate.EndTime)
	assert.Equal(t, OriginAggregated, aggregate.Origin)
	assert.Equal(t, "standup → review → bugfix", aggregate.Title)
}

func TestAggregateSortsChronologically(t *testing.T) {
	t.Parallel()

	inputs := []ActivityBlock{
		rawBlock("late", "14:00", "14:30", 1800, "second"),
		rawBlock("early", "09:00", "09:30", 1800, "first"),
	}

	aggregate, err := Aggregate(inputs, NewExclusionSet())
	require.NoError(t, err)

	assert.Equal(t, "09:00", aggregate.StartTime)
	assert.Equal(t, "14:30", aggregate.EndTime)
	assert.Equal(t, "first → second", aggregate.Title)
	require.Len(t, aggregate.Aggregation.Sources, 2)
	assert.Equal(t, "early", aggregate.Aggregation.Sources[0].ID)
}

func TestAggregateEarliestTicketWins(t *testing.T) {
	t.Parallel()

	first := rawBlock("a", "09:00", "09:30", 1800, "one")
	second := rawBlock("b", "10:00", "10:30", 1800, "two")
	second.SelectedTicket = "ABC-2"
	third := rawBlock("c", "11:00", "11:30", 1800, "three")
	third.SelectedTicket = "ABC-3"

	aggregate, err := Aggregate([]ActivityBlock{third, first, second}, NewExclusionSet())
	require.NoError(t, err)

	assert.Equal(t, "ABC-2", aggregate.SelectedTicket, "earliest non-empty ticket wins")
}

func TestAggregateRequiresTwoBlocks(t *testing.T) {
	t.Parallel()

	_, err := Aggregate([]ActivityBlock{rawBlock("a", "09:00", "09:30", 1800, "solo")}, NewExclusionSet())
	assert.ErrorIs(t, err, ErrInvalidAggregation)

	_, err = Aggregate(nil, NewExclusionSet())
	assert.ErrorIs(t, err, ErrInvalidAggregation)
}

func TestAggregateRecordsExclusionsAndFreshID(t *testing.T) {
	t.Parallel()

	inputs := []ActivityBlock{
		rawBlock("a", "09:00", "09:30", 1800, "one"),
		rawBlock("b", "10:00", "10:30", 1800, "two"),
	}
	exclusions := NewExclusionSet()

	aggregate, err := Aggregate(inputs, exclusions)
	require.NoError(t, err)

	assert.True(t, exclusions.Has("a"))
	assert.True(t, exclusions.Has("b"))
	assert.NotEmpty(t, aggregate.ID)
	assert.NotEqual(t, "a", aggregate.ID)
	assert.NotEqual(t, "b", aggregate.ID)
	assert.ElementsMatch(t, []string{"a", "b"}, aggregate.Aggregation.SourceIDs())
}

func TestAggregateLeavesExclusionsUntouchedOnError(t *testing.T) {
	t.Parallel()

	inputs := []ActivityBlock{
		rawBlock("a", "09:00", "09:30", 1800, "ok"),
		rawBlock("broken", "not-a-time", "10:30", 1800, "bad"),
	}
	exclusions := NewExclusionSet()

	_, err := Aggregate(inputs, exclusions)
	require.Error(t, err)
	assert.Empty(t, exclusions.IDs(), "a failed aggregation must not mutate the exclusion set")
}

func TestDisaggregateRestoresOriginalsExactly(t *testing.T) {
	t.Parallel()

	inputs := []ActivityBlock{
		rawBlock("a", "09:00", "09:10", 600, "standup"),
		rawBlock("b", "09:10", "09:25", 900, "review"),
		rawBlock("c", "09:30", "09:50", 1200, "bugfix"),
	}
	inputs[1].SelectedTicket = "ABC-7"
	exclusions := NewExclusionSet()

	aggregate, err := Aggregate(inputs, exclusions)
	require.NoError(t, err)

	restored, err := Disaggregate(aggregate, exclusions)
	require.NoError(t, err)

	sorted := append([]ActivityBlock(nil), inputs...)
	assert.ElementsMatch(t, sorted, restored, "restored blocks must equal the originals field for field")
	assert.Empty(t, exclusions.IDs(), "restored ids must leave the exclusion set")

	total := 0
	for _, b := range restored {
		total += b.DurationSeconds
	}
	assert.Equal(t, aggregate.DurationSeconds, total)
}

func TestDisaggregateRejectsNonAggregates(t *testing.T) {
	t.Parallel()

	_, err := Disaggregate(rawBlock("a", "09:00", "09:30", 1800, "raw"), NewExclusionSet())
	assert.ErrorIs(t, err, ErrNotAggregated)

	manual := rawBlock("m", "09:00", "09:30", 1800, "manual")
	manual.Origin = OriginManual
	_, err = Disaggregate(manual, NewExclusionSet())
	assert.ErrorIs(t, err, ErrNotAggregated)
}

func TestReaggregationIsEquivalentUpToID(t *testing.T) {
	t.Parallel()

	inputs := []ActivityBlock{
		rawBlock("a", "09:00", "09:30", 1800, "one"),
		rawBlock("b", "10:00", "10:45", 2700, "two"),
	}
	exclusions := NewExclusionSet()

	first, err := Aggregate(inputs, exclusions)
	require.NoError(t, err)

	restored, err := Disaggregate(first, exclusions)
	require.NoError(t, err)

	second, err := Aggregate(restored, exclusions)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "aggregate ids are always fresh")
	assert.Equal(t, first.StartTime, second.StartTime)
	assert.Equal(t, first.EndTime, second.EndTime)
	assert.Equal(t, first.DurationSeconds, second.DurationSeconds)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Aggregation.Sources, second.Aggregation.Sources)
}

func TestNestedAggregationStaysLossless(t *testing.T) {
	t.Parallel()

	exclusions := NewExclusionSet()
	inner, err := Aggregate([]ActivityBlock{
		rawBlock("a", "09:00", "09:30", 1800, "one"),
		rawBlock("b", "09:30", "10:00", 1800, "two"),
	}, exclusions)
	require.NoError(t, err)

	outer, err := Aggregate([]ActivityBlock{
		inner,
		rawBlock("c", "11:00", "11:30", 1800, "three"),
	}, exclusions)
	require.NoError(t, err)

	restored, err := Disaggregate(outer, exclusions)
	require.NoError(t, err)
	require.Len(t, restored, 2)

	var restoredInner ActivityBlock
	for _, b := range restored {
		if b.ID == inner.ID {
			restoredInner = b
		}
	}
	require.True(t, restoredInner.IsAggregated(), "the nested aggregate must keep its own snapshot")

	innerRestored, err := Disaggregate(restoredInner, exclusions)
	require.NoError(t, err)
	assert.Len(t, innerRestored, 2)
}

func TestAggregateSkipsEmptyTitles(t *testing.T) {
	t.Parallel()

	inputs := []ActivityBlock{
		rawBlock("a", "09:00", "09:30", 1800, "  "),
		rawBlock("b", "10:00", "10:30", 1800, "only"),
	}

	aggregate, err := Aggregate(inputs, NewExclusionSet())
	require.NoError(t, err)
	assert.Equal(t, "only", aggregate.Title)
	assert.False(t, strings.Contains(aggregate.Title, "→"))
}
