package model

// AvailabilitySlot is one mentor-declared open window, either recurring every
// week (empty WeekKey) or scoped to the week named by WeekKey (the Monday of
// that week, YYYY-MM-DD).
type AvailabilitySlot struct {
	ID        string `json:"id"`
	Day       int    `json:"day"` // 0 = Sunday .. 6 = Saturday
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	WeekKey   string `json:"weekKey,omitempty"`
}

// Recurring reports whether the slot applies every week.
func (s AvailabilitySlot) Recurring() bool {
	return s.WeekKey == ""
}
