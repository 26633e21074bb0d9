package schedule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// SlotError reports the first invalid slot in a submitted availability set.
type SlotError struct {
	Index  int
	Field  string
	Reason string
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("availability slot %d: %s %s", e.Index, e.Field, e.Reason)
}

// SlotID derives the stable identifier for a declared window. Equal windows
// collapse to one id, and a Booking can reference the window it was carved
// from without a synthetic key.
func SlotID(day int, startTime, endTime, weekKey string) string {
	if weekKey == "" {
		weekKey = "recurring"
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%s", day, startTime, endTime, weekKey)))
	return hex.EncodeToString(sum[:8])
}

// ValidTime reports whether raw is a zero-padded 24-hour HH:MM string.
func ValidTime(raw string) bool {
	return timePattern.MatchString(raw)
}

// NormalizeSlots validates a submitted availability set and returns the
// canonical form: week keys snapped to their own Monday, ids derived, and
// duplicates collapsed with the last occurrence winning. A warning is
// returned for every week key that had to be corrected. Any invalid slot
// fails the whole set; nothing is partially accepted.
func NormalizeSlots(input []model.AvailabilitySlot) ([]model.AvailabilitySlot, []string, error) {
	var warnings []string
	byID := make(map[string]model.AvailabilitySlot, len(input))
	order := make([]string, 0, len(input))

	for i, slot := range input {
		if slot.Day < 0 || slot.Day > 6 {
			return nil, nil, &SlotError{Index: i, Field: "day", Reason: fmt.Sprintf("must be 0-6, got %d", slot.Day)}
		}
		if !ValidTime(slot.StartTime) {
			return nil, nil, &SlotError{Index: i, Field: "startTime", Reason: fmt.Sprintf("%q is not a valid HH:MM time", slot.StartTime)}
		}
		if !ValidTime(slot.EndTime) {
			return nil, nil, &SlotError{Index: i, Field: "endTime", Reason: fmt.Sprintf("%q is not a valid HH:MM time", slot.EndTime)}
		}
		// Zero-padded HH:MM compares correctly as a string.
		if slot.StartTime >= slot.EndTime {
			return nil, nil, &SlotError{Index: i, Field: "startTime", Reason: fmt.Sprintf("%s must be before endTime %s", slot.StartTime, slot.EndTime)}
		}
		if slot.WeekKey != "" {
			normalized, err := NormalizeWeekKey(slot.WeekKey)
			if err != nil {
				return nil, nil, &SlotError{Index: i, Field: "weekKey", Reason: err.Error()}
			}
			if normalized != slot.WeekKey {
				warnings = append(warnings, fmt.Sprintf("slot %d: weekKey %s corrected to monday %s", i, slot.WeekKey, normalized))
				slot.WeekKey = normalized
			}
		}

		slot.ID = SlotID(slot.Day, slot.StartTime, slot.EndTime, slot.WeekKey)
		if _, seen := byID[slot.ID]; !seen {
			order = append(order, slot.ID)
		}
		byID[slot.ID] = slot
	}

	out := make([]model.AvailabilitySlot, 0, len(byID))
	for _, id := range order {
		out = append(out, byID[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekKey != out[j].WeekKey {
			return out[i].WeekKey < out[j].WeekKey
		}
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, warnings, nil
}
