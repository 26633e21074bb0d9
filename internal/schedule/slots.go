package schedule

import (
	"sort"
	"time"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

// DefaultGranularity is the sub-interval size used to materialize discrete
// bookable start times from a declared window.
const DefaultGranularity = 30 * time.Minute

// Interval is a half-open [Start, End) busy interval.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Back-to-back intervals (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// WindowsForDate resolves which declared windows apply to a calendar date.
// A week-specific window for the date's week fully overrides the recurring
// windows for that weekday; recurring windows only apply as a fallback.
func WindowsForDate(slots []model.AvailabilitySlot, date time.Time) []model.AvailabilitySlot {
	weekday := int(date.Weekday())
	weekKey := MondayOf(date)

	var specific, recurring []model.AvailabilitySlot
	for _, slot := range slots {
		if slot.Day != weekday {
			continue
		}
		switch slot.WeekKey {
		case weekKey:
			specific = append(specific, slot)
		case "":
			recurring = append(recurring, slot)
		}
	}
	if len(specific) > 0 {
		return specific
	}
	return recurring
}

// GenerateSlots materializes the bookable start times for a mentor on one
// calendar date: every granularity-aligned start inside an applicable window
// whose interval does not overlap any busy interval. Trailing partial
// intervals are dropped, not truncated. The result is deduplicated, sorted
// ascending, and deterministic for a fixed snapshot.
func GenerateSlots(slots []model.AvailabilitySlot, date time.Time, granularity time.Duration, busy []Interval) []string {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	windows := WindowsForDate(slots, date)
	seen := make(map[string]struct{})
	var out []string

	for _, win := range windows {
		start := CombineDateTime(date, win.StartTime)
		end := CombineDateTime(date, win.EndTime)

		for t := start; !t.Add(granularity).After(end); t = t.Add(granularity) {
			if overlapsAny(t, t.Add(granularity), busy) {
				continue
			}
			hhmm := t.Format("15:04")
			if _, dup := seen[hhmm]; dup {
				continue
			}
			seen[hhmm] = struct{}{}
			out = append(out, hhmm)
		}
	}

	sort.Strings(out)
	return out
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// CombineDateTime anchors a wall-clock HH:MM onto a calendar date in UTC.
// The time string must already be validated.
func CombineDateTime(date time.Time, hhmm string) time.Time {
	clock, _ := time.Parse("15:04", hhmm)
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
}
