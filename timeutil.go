package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// --- Clock Strings ---

// clockPattern accepts 24-hour HH:MM with an optional leading zero on the hour.
var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// parseClock parses "HH:MM" into hour and minute. ok is false when the input
// is not a valid 24-hour clock string.
func parseClock(s string) (hour, minute int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, true
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// localClockToUTC converts a wall-clock time in loc to the equivalent UTC
// "HH:MM" using now's date in that zone. The conversion is anchored to the
// write day; a later DST transition shifts the effective local delivery time
// until the user resets the reminder.
func localClockToUTC(hour, minute int, loc *time.Location, now time.Time) string {
	local := now.In(loc)
	t := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return t.UTC().Format("15:04")
}

// utcClockToLocal converts a stored UTC "HH:MM" back to wall-clock time in loc
// using now's date.
func utcClockToLocal(clock string, loc *time.Location, now time.Time) (string, error) {
	hour, minute, ok := parseClock(clock)
	if !ok {
		return "", fmt.Errorf("invalid clock string %q", clock)
	}
	u := now.UTC()
	t := time.Date(u.Year(), u.Month(), u.Day(), hour, minute, 0, 0, time.UTC)
	return t.In(loc).Format("15:04"), nil
}

// --- Timezones ---

// loadTimezone resolves an IANA zone name, rejecting empty and fixed-offset
// shorthand input.
func loadTimezone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty timezone")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// commonTimezone pairs a display label with an IANA zone name for the picker
// keyboard.
type commonTimezone struct {
	Label string
	Zone  string
}

var commonTimezones = []commonTimezone{
	{"🇺🇸 US Eastern", "America/New_York"},
	{"🇺🇸 US Pacific", "America/Los_Angeles"},
	{"🇺🇸 US Central", "America/Chicago"},
	{"🇺🇸 US Mountain", "America/Denver"},
	{"🇬🇧 London", "Europe/London"},
	{"🇫🇷 Paris/Berlin", "Europe/Paris"},
	{"🇯🇵 Tokyo", "Asia/Tokyo"},
	{"🇨🇳 Shanghai", "Asia/Shanghai"},
	{"🇮🇳 India", "Asia/Kolkata"},
	{"🇦🇺 Sydney", "Australia/Sydney"},
}
