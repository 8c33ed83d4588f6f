package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		offset   string
		wantSecs int
		wantErr  bool
	}{
		{offset: "", wantSecs: 0},
		{offset: "Z", wantSecs: 0},
		{offset: " UTC ", wantSecs: 0},
		{offset: "+05:30", wantSecs: 5*3600 + 30*60},
		{offset: "-04:00", wantSecs: -4 * 3600},
		{offset: "+14:00", wantSecs: 14 * 3600},
		{offset: "+15:00", wantErr: true},
		{offset: "+05:60", wantErr: true},
		{offset: "05:30", wantErr: true},
		{offset: "+0530", wantErr: true},
		{offset: "+ab:cd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.offset, func(t *testing.T) {
			loc, err := ParseOffset(tt.offset)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, secs := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
			assert.Equal(t, tt.wantSecs, secs)
		})
	}
}

func TestCalendar(t *testing.T) {
	cal, err := NewCalendar("+05:30")
	require.NoError(t, err)

	// still sunday in UTC, already monday in the calendar's zone
	cal.SetClock(func() time.Time { return time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC) })
	assert.Equal(t, "2024-01-01", cal.Today())
	assert.Equal(t, "monday", cal.Weekday())
	assert.Equal(t, []string{"2023-12-30", "2023-12-31", "2024-01-01"}, cal.LastDays(3))
	assert.Empty(t, cal.LastDays(0))

	utc, err := NewCalendar("Z")
	require.NoError(t, err)
	utc.SetClock(func() time.Time { return time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC) })
	assert.Equal(t, "2023-12-31", utc.Today())
	assert.Equal(t, "sunday", utc.Weekday())

	_, err = NewCalendar("lol")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d)

	for _, s := range []string{"", "2023-02-29", "2024-1-1", "01/01/2024", "yesterday"} {
		_, err = ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestIsWeekday(t *testing.T) {
	assert.True(t, IsWeekday("monday"))
	assert.True(t, IsWeekday("sunday"))
	assert.False(t, IsWeekday("Monday"))
	assert.False(t, IsWeekday("funday"))
	assert.False(t, IsWeekday(""))
}
