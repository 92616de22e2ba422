package checkin

import (
	"testing"
	"time"
)

func TestDaysBetweenInclusiveBothEnds(t *testing.T) {
	from := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 23, 59, 0, 0, time.UTC)

	days := DaysBetween(from, to)
	if len(days) != 8 {
		t.Fatalf("expected 8 days, got %d: %v", len(days), days)
	}
	if days[0] != "2024-01-01" || days[7] != "2024-01-08" {
		t.Errorf("range must include both endpoints, got %v", days)
	}
}

func TestDaysBetweenSameDay(t *testing.T) {
	d := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	days := DaysBetween(d, d.Add(5*time.Hour))
	if len(days) != 1 || days[0] != "2024-01-01" {
		t.Errorf("same calendar day yields one key, got %v", days)
	}
}

func TestDaysBetweenCrossesMonthBoundary(t *testing.T) {
	from := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	days := DaysBetween(from, to)
	want := []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}
	if len(days) != len(want) {
		t.Fatalf("got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: got %q, want %q", i, days[i], want[i])
		}
	}
}

func TestDaysBetweenReversedRangeIsEmpty(t *testing.T) {
	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if days := DaysBetween(from, to); days != nil {
		t.Errorf("reversed range must be empty, got %v", days)
	}
}
