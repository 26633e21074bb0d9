package schedule

import (
	"errors"
	"testing"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
)

func TestNormalizeSlots_AssignsStableIDs(t *testing.T) {
	slots, warnings, err := NormalizeSlots([]model.AvailabilitySlot{
		{Day: 1, StartTime: "09:00", EndTime: "12:00"},
		{Day: 3, StartTime: "14:00", EndTime: "16:00", WeekKey: "2025-03-10"},
	})
	if err != nil {
		t.Fatalf("NormalizeSlots failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.ID == "" {
			t.Fatalf("slot %+v missing id", s)
		}
	}

	// Same window, same id.
	again, _, err := NormalizeSlots([]model.AvailabilitySlot{
		{Day: 1, StartTime: "09:00", EndTime: "12:00"},
	})
	if err != nil {
		t.Fatalf("NormalizeSlots failed: %v", err)
	}
	if again[0].ID != slots[0].ID {
		t.Fatalf("expected stable id, got %s vs %s", again[0].ID, slots[0].ID)
	}
}

func TestNormalizeSlots_DuplicatesCollapse(t *testing.T) {
	slots, _, err := NormalizeSlots([]model.AvailabilitySlot{
		{Day: 1, StartTime: "09:00", EndTime: "12:00"},
		{Day: 1, StartTime: "09:00", EndTime: "12:00"},
		{Day: 1, StartTime: "09:00", EndTime: "12:00"},
	})
	if err != nil {
		t.Fatalf("NormalizeSlots failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected duplicates to collapse to 1 slot, got %d", len(slots))
	}
}

func TestNormalizeSlots_WeekKeyCorrected(t *testing.T) {
	// 2025-03-13 is a Thursday; it should snap to the Monday of its week.
	slots, warnings, err := NormalizeSlots([]model.AvailabilitySlot{
		{Day: 4, StartTime: "10:00", EndTime: "11:00", WeekKey: "2025-03-13"},
	})
	if err != nil {
		t.Fatalf("NormalizeSlots failed: %v", err)
	}
	if slots[0].WeekKey != "2025-03-10" {
		t.Fatalf("expected weekKey 2025-03-10, got %s", slots[0].WeekKey)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestNormalizeSlots_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		slot  model.AvailabilitySlot
		field string
	}{
		{"day out of range", model.AvailabilitySlot{Day: 7, StartTime: "09:00", EndTime: "10:00"}, "day"},
		{"bad start", model.AvailabilitySlot{Day: 1, StartTime: "9:00", EndTime: "10:00"}, "startTime"},
		{"bad end", model.AvailabilitySlot{Day: 1, StartTime: "09:00", EndTime: "24:00"}, "endTime"},
		{"start not before end", model.AvailabilitySlot{Day: 1, StartTime: "10:00", EndTime: "10:00"}, "startTime"},
		{"bad week key", model.AvailabilitySlot{Day: 1, StartTime: "09:00", EndTime: "10:00", WeekKey: "garbage"}, "weekKey"},
	}

	for _, tc := range cases {
		_, _, err := NormalizeSlots([]model.AvailabilitySlot{tc.slot})
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var se *SlotError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected SlotError, got %T", tc.name, err)
		}
		if se.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, se.Field)
		}
	}
}

func TestNormalizeSlots_DeterministicOrder(t *testing.T) {
	in := []model.AvailabilitySlot{
		{Day: 3, StartTime: "14:00", EndTime: "16:00"},
		{Day: 1, StartTime: "09:00", EndTime: "12:00"},
		{Day: 1, StartTime: "08:00", EndTime: "09:00", WeekKey: "2025-03-10"},
	}
	slots, _, err := NormalizeSlots(in)
	if err != nil {
		t.Fatalf("NormalizeSlots failed: %v", err)
	}
	// Recurring (empty week key) sorts before dated entries, by day then start.
	if slots[0].Day != 1 || slots[0].StartTime != "09:00" || slots[0].WeekKey != "" {
		t.Fatalf("unexpected first slot: %+v", slots[0])
	}
	if slots[1].Day != 3 {
		t.Fatalf("unexpected second slot: %+v", slots[1])
	}
	if slots[2].WeekKey != "2025-03-10" {
		t.Fatalf("unexpected third slot: %+v", slots[2])
	}
}
