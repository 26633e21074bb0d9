package schedule

import (
	"testing"
	"time"
)

func TestMondayOf(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	wed := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	if got := MondayOf(wed); got != "2025-03-10" {
		t.Fatalf("expected 2025-03-10, got %s", got)
	}

	// A Monday maps to itself.
	mon := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := MondayOf(mon); got != "2025-03-10" {
		t.Fatalf("expected 2025-03-10, got %s", got)
	}

	// Sunday belongs to the week that started six days earlier.
	sun := time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC)
	if got := MondayOf(sun); got != "2025-03-10" {
		t.Fatalf("expected 2025-03-10, got %s", got)
	}
}

func TestMondayOf_MonthBoundary(t *testing.T) {
	// 2025-05-01 is a Thursday; its Monday is in April.
	d := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	if got := MondayOf(d); got != "2025-04-28" {
		t.Fatalf("expected 2025-04-28, got %s", got)
	}
}

func TestNormalizeWeekKey(t *testing.T) {
	got, err := NormalizeWeekKey("2025-03-13")
	if err != nil {
		t.Fatalf("NormalizeWeekKey failed: %v", err)
	}
	if got != "2025-03-10" {
		t.Fatalf("expected 2025-03-10, got %s", got)
	}

	// Idempotent: a Monday is its own normal form.
	again, err := NormalizeWeekKey(got)
	if err != nil {
		t.Fatalf("NormalizeWeekKey failed: %v", err)
	}
	if again != got {
		t.Fatalf("expected idempotent normalization, got %s then %s", got, again)
	}

	if _, err := NormalizeWeekKey("not-a-date"); err == nil {
		t.Fatal("expected error for malformed week key")
	}
}
