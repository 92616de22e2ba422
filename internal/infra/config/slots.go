package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mood_checkin_bot/internal/domain/schedule"
)

// slotsFile is the on-disk shape of a slot schedule override:
//
//	slots:
//	  - name: morning
//	    hour: 8
//	  - name: evening
//	    hour: 17
type slotsFile struct {
	Slots []schedule.Slot `yaml:"slots"`
}

// LoadSchedule builds the slot schedule. With an empty path the built-in
// default (morning 8, midday 13, evening 17, night 21, bedtime 23) is used.
func LoadSchedule(path string) (*schedule.Schedule, error) {
	if path == "" {
		return schedule.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read slots file %s: %w", path, err)
	}

	var parsed slotsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse slots file %s: %w", path, err)
	}

	sched, err := schedule.New(parsed.Slots)
	if err != nil {
		return nil, fmt.Errorf("invalid slot schedule in %s: %w", path, err)
	}
	return sched, nil
}
