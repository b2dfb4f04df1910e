package timex

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthBounds_UsesRealMonthLength(t *testing.T) {
	tests := []struct {
		name      string
		at        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "february leap year",
			at:        time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "thirty day month",
			at:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls the year",
			at:        time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthBounds(tt.at, time.UTC)
			assert.True(t, tt.wantStart.Equal(start), "start = %v", start)
			assert.True(t, tt.wantEnd.Equal(end), "end = %v", end)
		})
	}
}

func TestDayBounds_InReferenceLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-06-01 20:00 UTC is already 2024-06-02 05:00 in Tokyo.
	at := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	start, end := DayBounds(at, tokyo)

	assert.Equal(t, 2, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), time.UTC))  // Saturday
	assert.True(t, IsWeekend(time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC), time.UTC))  // Sunday
	assert.False(t, IsWeekend(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC), time.UTC)) // Monday
}
