package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "morning", input: "09:30", want: 570},
		{name: "end of day", input: "23:59", want: 1439},
		{name: "seconds below half round down", input: "09:30:29", want: 570},
		{name: "seconds at half round up", input: "09:30:30", want: 571},
		{name: "whitespace tolerated", input: " 10:15 ", want: 615},
		{name: "hour out of range", input: "24:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "second out of range", input: "10:00:75", wantErr: true},
		{name: "not a clock time", input: "morning", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToMinutes(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "00:00", FormatMinutes(0))
	assert.Equal(t, "09:05", FormatMinutes(545))
	assert.Equal(t, "23:59", FormatMinutes(1439))
	assert.Equal(t, "00:00", FormatMinutes(-10))
}

func TestEndTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		start    string
		duration int
		wrap     bool
		want     string
		wantErr  bool
	}{
		{name: "plain hour", start: "09:00", duration: 3600, want: "10:00"},
		{name: "rounds seconds to nearest minute", start: "09:00", duration: 90, want: "09:02"},
		{name: "clamps at end of day", start: "23:30", duration: 3600, want: "23:59"},
		{name: "wraps past midnight when allowed", start: "23:30", duration: 3600, wrap: true, want: "00:30"},
		{name: "zero duration", start: "12:00", duration: 0, want: "12:00"},
		{name: "negative duration", start: "12:00", duration: -60, wantErr: true},
		{name: "bad start", start: "25:00", duration: 60, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := EndTime(tc.start, tc.duration, tc.wrap)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDurationMinutes(t *testing.T) {
	t.Parallel()

	got, err := DurationMinutes("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 90, got)

	got, err = DurationMinutes("10:30", "09:00")
	require.NoError(t, err)
	assert.Equal(t, -90, got, "callers must treat non-positive spans as invalid")

	_, err = DurationMinutes("bad", "10:00")
	assert.ErrorIs(t, err, ErrParse)
}

func TestIntervalOverlapsIsSymmetric(t *testing.T) {
	t.Parallel()

	pairs := []struct {
		a, b Interval
	}{
		{Interval{540, 600}, Interval{570, 630}},
		{Interval{540, 600}, Interval{600, 660}},
		{Interval{540, 600}, Interval{0, 540}},
		{Interval{540, 600}, Interval{550, 560}},
		{Interval{540, 600}, Interval{540, 600}},
		{Interval{540, 540}, Interval{500, 600}},
	}

	for _, pair := range pairs {
		assert.Equal(t, pair.a.Overlaps(pair.b), pair.b.Overlaps(pair.a),
			"overlaps(%v,%v) must equal overlaps(%v,%v)", pair.a, pair.b, pair.b, pair.a)
	}
}

func TestIntervalSelfOverlapIffPositiveDuration(t *testing.T) {
	t.Parallel()

	positive := Interval{540, 600}
	assert.True(t, positive.Overlaps(positive))

	empty := Interval{540, 540}
	assert.False(t, empty.Overlaps(empty))
}

func TestIntervalTouchingEndpointsDoNotOverlap(t *testing.T) {
	t.Parallel()

	a := Interval{540, 600}
	b := Interval{600, 660}
	assert.False(t, a.Overlaps(b))
	assert.Equal(t, 0, a.Intersect(b))
}

func TestIntervalIntersect(t *testing.T) {
	t.Parallel()

	a := Interval{540, 600}
	assert.Equal(t, 30, a.Intersect(Interval{570, 630}))
	assert.Equal(t, 10, a.Intersect(Interval{550, 560}))
	assert.Equal(t, 60, a.Intersect(Interval{500, 700}))
	assert.Equal(t, 0, a.Intersect(Interval{600, 700}))
}

func TestParseInterval(t *testing.T) {
	t.Parallel()

	interval, err := ParseInterval("09:00", "10:00")
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: 540, End: 600}, interval)
	assert.Equal(t, 60, interval.Duration())

	_, err = ParseInterval("09:00", "x")
	assert.ErrorIs(t, err, ErrParse)
}
