package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewTimer_FloorsToBoundary(t *testing.T) {
	tests := []struct {
		name     string
		period   FixedUpdate
		now      time.Time
		expected time.Time
	}{
		{
			name:     "Minute boundary drops seconds",
			period:   Minutes(15),
			now:      time.Date(2022, 12, 1, 10, 47, 33, 500e6, time.UTC),
			expected: time.Date(2022, 12, 1, 10, 47, 0, 0, time.UTC),
		},
		{
			name:     "Hour boundary drops minutes",
			period:   Hours(1),
			now:      time.Date(2022, 12, 1, 10, 47, 33, 0, time.UTC),
			expected: time.Date(2022, 12, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "Day boundary drops time of day",
			period:   Days(1),
			now:      time.Date(2022, 12, 1, 10, 47, 33, 0, time.UTC),
			expected: time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := NewTimer(tt.period)
			timer.now = func() time.Time { return tt.now }
			timer.datetime = tt.period.floor(tt.now)

			assert.Equal(t, tt.expected.UnixMilli(), timer.TsMs())
		})
	}
}

func Test_Update(t *testing.T) {
	current := time.Date(2022, 12, 1, 10, 47, 33, 0, time.UTC)

	timer := NewTimer(Minutes(15))
	timer.now = func() time.Time { return current }
	timer.datetime = Minutes(15).floor(current)

	// Nothing has elapsed yet.
	assert.False(t, timer.Update())

	// One second short of the period past the 10:47 boundary.
	current = time.Date(2022, 12, 1, 11, 1, 59, 0, time.UTC)
	assert.False(t, timer.Update())

	// Period reached: fires once and re-arms at the current boundary.
	current = time.Date(2022, 12, 1, 11, 2, 0, 0, time.UTC)
	require.True(t, timer.Update())
	assert.Equal(t, time.Date(2022, 12, 1, 11, 2, 0, 0, time.UTC).UnixMilli(), timer.TsMs())

	// Immediately polling again must not fire a second time.
	assert.False(t, timer.Update())
}

func Test_Update_HourPeriod(t *testing.T) {
	current := time.Date(2022, 12, 1, 10, 59, 0, 0, time.UTC)

	timer := NewTimer(Hours(2))
	timer.now = func() time.Time { return current }
	timer.datetime = Hours(2).floor(current) // 10:00

	current = time.Date(2022, 12, 1, 11, 59, 0, 0, time.UTC)
	assert.False(t, timer.Update(), "One hour into a two-hour period should not fire")

	current = time.Date(2022, 12, 1, 12, 0, 0, 0, time.UTC)
	require.True(t, timer.Update())
	assert.Equal(t, time.Date(2022, 12, 1, 12, 0, 0, 0, time.UTC).UnixMilli(), timer.TsMs())
}
