package checkin

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving user
// records: users, day entries, per-slot scores and notes. A day entry may
// exist with no scores at all; backfill relies on that.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	// EnsureDays inserts the given day keys for a user, skipping any that
	// already exist. Day entries are never deleted.
	EnsureDays(ctx context.Context, telegramID int64, days []string) error
	CountDays(ctx context.Context, telegramID int64) (int, error)

	// InsertScore records a score for (day, slot). Returns
	// ErrDuplicateSlot if a score for that pair already exists; the stored
	// value is never overwritten.
	InsertScore(ctx context.Context, telegramID int64, day, slot string, score int) error
	HasScore(ctx context.Context, telegramID int64, day, slot string) (bool, error)
	ScoresForDay(ctx context.Context, telegramID int64, day string) (map[string]int, error)

	// RecentDays returns the most recent `limit` day entries (oldest
	// first) together with whatever scores each day has.
	RecentDays(ctx context.Context, telegramID int64, limit int) ([]DayScores, error)
	ListReports(ctx context.Context, telegramID int64) ([]Report, error)

	AppendNote(ctx context.Context, telegramID int64, at time.Time, body string) error
	ListNotes(ctx context.Context, telegramID int64) ([]Note, error)
}
