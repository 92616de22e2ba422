package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScheduleEmptyPathUsesDefault(t *testing.T) {
	sched, err := LoadSchedule("")
	if err != nil {
		t.Fatalf("LoadSchedule: %v", err)
	}
	slots := sched.Slots()
	if len(slots) != 5 {
		t.Fatalf("expected the 5 built-in slots, got %d", len(slots))
	}
	if slots[0].Name != "morning" || slots[0].Hour != 8 {
		t.Errorf("first default slot should be morning at 8, got %+v", slots[0])
	}
}

func TestLoadScheduleParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	content := "slots:\n  - name: sunrise\n    hour: 6\n  - name: sunset\n    hour: 20\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	sched, err := LoadSchedule(path)
	if err != nil {
		t.Fatalf("LoadSchedule: %v", err)
	}
	slots := sched.Slots()
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Name != "sunrise" || slots[1].Name != "sunset" {
		t.Errorf("unexpected slots %+v", slots)
	}
}

func TestLoadScheduleRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	// Duplicate hours are invalid.
	content := "slots:\n  - name: a\n    hour: 6\n  - name: b\n    hour: 6\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSchedule(path); err == nil {
		t.Fatal("expected an error for duplicate hours")
	}
}

func TestLoadScheduleMissingFile(t *testing.T) {
	if _, err := LoadSchedule(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
