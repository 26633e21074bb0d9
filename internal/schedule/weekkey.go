package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates and week keys.
const DateLayout = "2006-01-02"

// MondayOf returns the week key for t: the YYYY-MM-DD of the Monday of t's
// ISO week, with Sunday counting as day 7. Idempotent: feeding a Monday back
// in returns the same date.
func MondayOf(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return t.AddDate(0, 0, 1-wd).Format(DateLayout)
}

// NormalizeWeekKey parses raw as a calendar date and returns the week key of
// the week it falls in.
func NormalizeWeekKey(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return MondayOf(t), nil
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", raw)
	}
	return t, nil
}
