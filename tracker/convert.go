package tracker

import (
	"context"
	"time"

	"daybook/block"
	"daybook/internal/clock"
)

// BlocksFromSamples converts feed samples into raw activity blocks,
// expressing timestamps as local clock time. Samples without positive
// duration are kept as placeholders; the classifier treats them as new.
func BlocksFromSamples(samples []Sample) []block.ActivityBlock {
	blocks := make([]block.ActivityBlock, 0, len(samples))
	for _, sample := range samples {
		start := time.Unix(sample.StartTimestamp, 0).In(time.Local)
		startMinutes := start.Hour()*60 + start.Minute()
		if start.Second() >= 30 {
			startMinutes++
		}
		startClock := clock.FormatMinutes(startMinutes)
		endClock, err := clock.EndTime(startClock, sample.DurationSeconds, false)
		if err != nil {
			endClock = startClock
		}

		blocks = append(blocks, block.ActivityBlock{
			ID:              sample.ID,
			StartTime:       startClock,
			EndTime:         endClock,
			DurationSeconds: sample.DurationSeconds,
			Title:           sample.Title,
			SourceApp:       sample.AppName,
			Origin:          block.OriginRaw,
		})
	}
	return blocks
}

// FetchDayBlocks fetches one day's samples and converts them to blocks.
func (c *HTTPClient) FetchDayBlocks(ctx context.Context, day time.Time) ([]block.ActivityBlock, error) {
	samples, err := c.FetchDay(ctx, day)
	if err != nil {
		return nil, err
	}
	return BlocksFromSamples(samples), nil
}
