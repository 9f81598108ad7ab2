package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in     string
		hour   int
		minute int
		ok     bool
	}{
		{"09:00", 9, 0, true},
		{"9:00", 9, 0, true},
		{"00:00", 0, 0, true},
		{"23:59", 23, 59, true},
		{"14:30", 14, 30, true},
		{" 20:00 ", 20, 0, true},
		{"24:00", 0, 0, false},
		{"12:60", 0, 0, false},
		{"1200", 0, 0, false},
		{"12", 0, 0, false},
		{"ab:cd", 0, 0, false},
		{"", 0, 0, false},
		{"9:0", 0, 0, false},
		{"09:00 pm", 0, 0, false},
		{"-1:30", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, ok := parseClock(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.hour, hour)
				assert.Equal(t, tt.minute, minute)
			}
		})
	}
}

// Converting local to UTC and back with the same zone and date reproduces
// the original wall-clock string. DST transition dates are the documented
// exception and are pinned separately below.
func TestClockRoundTrip(t *testing.T) {
	zones := []string{"Europe/London", "America/New_York", "Asia/Tokyo", "Asia/Kolkata", "Australia/Sydney", "UTC"}
	clocks := []string{"00:00", "06:30", "09:00", "13:45", "23:30"}
	dates := []time.Time{
		time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC),
	}

	for _, zone := range zones {
		loc, err := loadTimezone(zone)
		require.NoError(t, err)
		for _, clock := range clocks {
			for _, now := range dates {
				t.Run(fmt.Sprintf("%s_%s_%s", zone, clock, now.Format("Jan")), func(t *testing.T) {
					hour, minute, ok := parseClock(clock)
					require.True(t, ok)
					utc := localClockToUTC(hour, minute, loc, now)
					back, err := utcClockToLocal(utc, loc, now)
					require.NoError(t, err)
					assert.Equal(t, clock, back)
				})
			}
		}
	}
}

func TestLondonOffsetsAcrossSeasons(t *testing.T) {
	loc, err := loadTimezone("Europe/London")
	require.NoError(t, err)

	summer := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "08:00", localClockToUTC(9, 0, loc, summer), "BST is UTC+1")

	winter := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "09:00", localClockToUTC(9, 0, loc, winter), "GMT is UTC+0")
}

func TestHalfHourOffsetZone(t *testing.T) {
	loc, err := loadTimezone("Asia/Kolkata")
	require.NoError(t, err)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	// IST is UTC+5:30 with no DST.
	assert.Equal(t, "03:30", localClockToUTC(9, 0, loc, now))
}

func TestMidnightWrapAround(t *testing.T) {
	loc, err := loadTimezone("Asia/Tokyo")
	require.NoError(t, err)
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	// 08:30 in Tokyo is 23:30 UTC the previous day; only the clock matters.
	assert.Equal(t, "23:30", localClockToUTC(8, 30, loc, now))

	back, err := utcClockToLocal("23:30", loc, now)
	require.NoError(t, err)
	assert.Equal(t, "08:30", back)
}

func TestLoadTimezone(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		loc, err := loadTimezone("Europe/Paris")
		require.NoError(t, err)
		assert.Equal(t, "Europe/Paris", loc.String())
	})
	t.Run("trimmed", func(t *testing.T) {
		_, err := loadTimezone("  Asia/Tokyo  ")
		assert.NoError(t, err)
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := loadTimezone("Mars/Olympus_Mons")
		assert.Error(t, err)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := loadTimezone("   ")
		assert.Error(t, err)
	})
}

func TestUTCClockToLocalRejectsGarbage(t *testing.T) {
	loc, err := loadTimezone("UTC")
	require.NoError(t, err)
	_, err = utcClockToLocal("nonsense", loc, time.Now())
	assert.Error(t, err)
}

func TestCommonTimezonesResolve(t *testing.T) {
	for _, tz := range commonTimezones {
		_, err := loadTimezone(tz.Zone)
		assert.NoError(t, err, tz.Zone)
	}
}
