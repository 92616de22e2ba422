package schedule

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 5, hour, minute, 0, 0, time.UTC)
}

func TestNewRejectsInvalidSlotLists(t *testing.T) {
	cases := []struct {
		name  string
		slots []Slot
	}{
		{"empty", nil},
		{"unnamed slot", []Slot{{Name: "", Hour: 8}}},
		{"hour below range", []Slot{{Name: "x", Hour: -1}}},
		{"hour above range", []Slot{{Name: "x", Hour: 24}}},
		{"duplicate name", []Slot{{Name: "x", Hour: 8}, {Name: "x", Hour: 9}}},
		{"duplicate hour", []Slot{{Name: "x", Hour: 8}, {Name: "y", Hour: 8}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.slots); err == nil {
				t.Errorf("expected an error for %v", tc.slots)
			}
		})
	}
}

func TestNewOrdersSlotsByHour(t *testing.T) {
	s, err := New([]Slot{
		{Name: "late", Hour: 22},
		{Name: "early", Hour: 6},
		{Name: "noon", Hour: 12},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	slots := s.Slots()
	want := []string{"early", "noon", "late"}
	for i, name := range want {
		if slots[i].Name != name {
			t.Errorf("slot %d: got %q, want %q", i, slots[i].Name, name)
		}
	}
}

func TestSlotAtMatchesByHourOnly(t *testing.T) {
	s := Default()

	if slot := s.SlotAt(at(8, 0)); slot == nil || slot.Name != "morning" {
		t.Errorf("08:00 should match morning, got %v", slot)
	}
	if slot := s.SlotAt(at(8, 59)); slot == nil || slot.Name != "morning" {
		t.Errorf("08:59 is still within the morning hour, got %v", slot)
	}
	if slot := s.SlotAt(at(9, 0)); slot != nil {
		t.Errorf("09:00 matches no slot, got %v", slot)
	}
}

func TestPendingSlotIsStrictlyBeforeCurrentHour(t *testing.T) {
	s := Default()
	none := map[string]int{}

	// The current hour's slot is never pending, even unscored.
	if slot := s.PendingSlot(at(8, 30), none); slot != nil {
		t.Errorf("08:30 with nothing recorded: morning is current, not pending, got %v", slot)
	}

	// Later in the day the earliest unscored past slot surfaces.
	if slot := s.PendingSlot(at(17, 30), none); slot == nil || slot.Name != "morning" {
		t.Errorf("17:30 with nothing recorded should owe morning, got %v", slot)
	}
	if slot := s.PendingSlot(at(17, 30), map[string]int{"morning": 6}); slot == nil || slot.Name != "midday" {
		t.Errorf("17:30 with morning done should owe midday, got %v", slot)
	}
	if slot := s.PendingSlot(at(17, 30), map[string]int{"morning": 6, "midday": 4}); slot != nil {
		t.Errorf("17:30 with the backlog clear owes nothing, got %v", slot)
	}
}
