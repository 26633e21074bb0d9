package schedule

import (
	"testing"
	"time"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

// 2025-03-12 is a Wednesday (weekday 3).
var wednesday = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func TestGenerateSlots_SplitsWindow(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{Day: 3, StartTime: "09:00", EndTime: "11:00"},
	}
	got := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	assertSlots(t, got, want)
}

func TestGenerateSlots_DropsBookedInterval(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{Day: 3, StartTime: "09:00", EndTime: "11:00"},
	}
	busy := []Interval{{
		Start: wednesday.Add(9*time.Hour + 30*time.Minute),
		End:   wednesday.Add(10*time.Hour + 30*time.Minute),
	}}
	got := GenerateSlots(slots, wednesday, 30*time.Minute, busy)
	want := []string{"09:00", "10:30"}
	assertSlots(t, got, want)
}

func TestGenerateSlots_DropsTrailingPartial(t *testing.T) {
	// 09:00-10:15 fits two whole half hours; the trailing 15 minutes is
	// dropped, never truncated into a shorter slot.
	slots := []model.AvailabilitySlot{
		{Day: 3, StartTime: "09:00", EndTime: "10:15"},
	}
	got := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	want := []string{"09:00", "09:30"}
	assertSlots(t, got, want)
}

func TestGenerateSlots_WeekSpecificOverridesRecurring(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{Day: 3, StartTime: "09:00", EndTime: "10:00"},
		{Day: 3, StartTime: "14:00", EndTime: "15:00", WeekKey: "2025-03-10"},
	}

	// In the week of 2025-03-10 only the dated window applies.
	got := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	assertSlots(t, got, []string{"14:00", "14:30"})

	// A week later the recurring window is back.
	nextWeek := wednesday.AddDate(0, 0, 7)
	got = GenerateSlots(slots, nextWeek, 30*time.Minute, nil)
	assertSlots(t, got, []string{"09:00", "09:30"})
}

func TestGenerateSlots_OtherWeekday(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{Day: 1, StartTime: "09:00", EndTime: "10:00"},
	}
	got := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	if len(got) != 0 {
		t.Fatalf("expected no slots on a non-matching weekday, got %v", got)
	}
}

func TestGenerateSlots_OverlappingWindowsDeduplicate(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{Day: 3, StartTime: "09:00", EndTime: "10:30"},
		{Day: 3, StartTime: "10:00", EndTime: "11:00"},
	}
	got := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	assertSlots(t, got, want)
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	slots := []model.AvailabilitySlot{
		{Day: 3, StartTime: "13:00", EndTime: "14:00"},
		{Day: 3, StartTime: "09:00", EndTime: "10:00"},
	}
	first := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	second := GenerateSlots(slots, wednesday, 30*time.Minute, nil)
	assertSlots(t, first, []string{"09:00", "09:30", "13:00", "13:30"})
	assertSlots(t, second, first)
}

func TestOverlaps(t *testing.T) {
	base := wednesday.Add(10 * time.Hour)
	hour := time.Hour

	// Partial overlap.
	if !Overlaps(base, base.Add(hour), base.Add(30*time.Minute), base.Add(90*time.Minute)) {
		t.Fatal("expected partial overlap to be detected")
	}
	// Containment.
	if !Overlaps(base, base.Add(2*hour), base.Add(30*time.Minute), base.Add(hour)) {
		t.Fatal("expected containment to be detected")
	}
	// Identical intervals.
	if !Overlaps(base, base.Add(hour), base, base.Add(hour)) {
		t.Fatal("expected identical intervals to overlap")
	}
	// Back-to-back intervals share only a boundary instant.
	if Overlaps(base, base.Add(hour), base.Add(hour), base.Add(2*hour)) {
		t.Fatal("back-to-back intervals must not overlap")
	}
	if Overlaps(base.Add(hour), base.Add(2*hour), base, base.Add(hour)) {
		t.Fatal("back-to-back intervals must not overlap (reversed)")
	}
}

func assertSlots(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
