package checkin

import (
	"time"
)

// DayFormat is the canonical calendar-date key ("YYYY-MM-DD") used for
// day entries and scores.
const DayFormat = "2006-01-02"

// Score bounds for a single self-report.
const (
	MinScore = 1
	MaxScore = 10
)

// User represents a check-in participant.
type User struct {
	ID          int64
	TelegramID  int64
	DisplayName string
	JoinedAt    time.Time
	CreatedAt   time.Time
}

// Report is one recorded score for a (day, slot) pair.
type Report struct {
	Day   string // YYYY-MM-DD
	Slot  string
	Score int
}

// DayScores groups the recorded scores of one calendar day.
type DayScores struct {
	Day    string
	Scores map[string]int // slot name -> score
}

// Note is one free-form private note.
type Note struct {
	ID         int64
	TelegramID int64
	CreatedAt  time.Time
	Body       string
}

// DaysBetween returns every calendar-date key from the date of `from`
// through the date of `to`, inclusive on both ends. The join day counts:
// a user who joined on the 1st has eight day keys on the 8th.
func DaysBetween(from, to time.Time) []string {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayFormat))
	}
	return days
}
