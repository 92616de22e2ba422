package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Slot is a named recurring time-of-day window in which exactly one
// self-report is expected per calendar day.
type Slot struct {
	Name string `yaml:"name"`
	Hour int    `yaml:"hour"` // 0..23, the trigger hour
}

// Schedule is the fixed set of daily slots, ordered by trigger hour.
// It is built once at startup and never mutated.
type Schedule struct {
	slots []Slot
}

// New validates the slot list and returns a Schedule ordered by hour.
func New(slots []Slot) (*Schedule, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("schedule must contain at least one slot")
	}
	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Hour < ordered[j].Hour })

	seenNames := make(map[string]bool, len(ordered))
	seenHours := make(map[int]bool, len(ordered))
	for _, s := range ordered {
		if s.Name == "" {
			return nil, fmt.Errorf("slot with hour %d has an empty name", s.Hour)
		}
		if s.Hour < 0 || s.Hour > 23 {
			return nil, fmt.Errorf("slot %q has invalid hour %d", s.Name, s.Hour)
		}
		if seenNames[s.Name] {
			return nil, fmt.Errorf("duplicate slot name %q", s.Name)
		}
		if seenHours[s.Hour] {
			return nil, fmt.Errorf("duplicate slot hour %d", s.Hour)
		}
		seenNames[s.Name] = true
		seenHours[s.Hour] = true
	}
	return &Schedule{slots: ordered}, nil
}

// Default returns the stock five-slot day.
func Default() *Schedule {
	s, _ := New([]Slot{
		{Name: "morning", Hour: 8},
		{Name: "midday", Hour: 13},
		{Name: "evening", Hour: 17},
		{Name: "night", Hour: 21},
		{Name: "bedtime", Hour: 23},
	})
	return s
}

// Slots returns the slots in trigger order.
func (s *Schedule) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// SlotAt returns the slot whose trigger hour equals now's hour, or nil.
// Matching is by hour equality only; the reminder tick additionally
// requires minute zero so a reminder fires once per hour boundary.
func (s *Schedule) SlotAt(now time.Time) *Slot {
	for i := range s.slots {
		if s.slots[i].Hour == now.Hour() {
			slot := s.slots[i]
			return &slot
		}
	}
	return nil
}

// PendingSlot returns the earliest slot whose trigger hour has already
// passed today and which has no recorded score yet, or nil when the
// backlog is clear. Note the asymmetry with SlotAt: this is a strict
// hour-has-passed test, so the current hour's slot is never pending.
func (s *Schedule) PendingSlot(now time.Time, recorded map[string]int) *Slot {
	for i := range s.slots {
		if s.slots[i].Hour >= now.Hour() {
			break
		}
		if _, ok := recorded[s.slots[i].Name]; !ok {
			slot := s.slots[i]
			return &slot
		}
	}
	return nil
}
