package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"mood_checkin_bot/internal/domain/checkin"
)

// Custom application-level errors for check-in operations
var ErrInvalidScore = fmt.Errorf("score must be an integer between 1 and 10")
var ErrNoTrendData = fmt.Errorf("no recorded scores in the requested window")

// Completeness thresholds: calendar days with an entry (scored or not)
// required before a trend report is available.
const (
	WeeklyRequiredDays  = 7
	MonthlyRequiredDays = 30
)

// TrendPoint is one (date, average score) pair of a trend series.
type TrendPoint struct {
	Day     string
	Average float64
}

// CheckinService owns the user record store semantics: idempotent user
// creation with day backfill, score submission, notes and trend
// aggregation.
type CheckinService struct {
	repo   checkin.Repository
	logger *logrus.Entry
}

func NewCheckinService(repo checkin.Repository, logger *logrus.Entry) *CheckinService {
	return &CheckinService{repo: repo, logger: logger}
}

// EnsureUser creates the user on first contact and backfills a day entry
// for every calendar date from joined_at through today, inclusive. It runs
// on every session start, so an existing user returning after an absence
// gets the missing days filled in too.
func (s *CheckinService) EnsureUser(ctx context.Context, telegramID int64, displayName string, now time.Time) (*checkin.User, error) {
	u := &checkin.User{
		TelegramID:  telegramID,
		DisplayName: displayName,
		JoinedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to ensure user %d: %w", telegramID, err)
	}

	days := checkin.DaysBetween(u.JoinedAt, now)
	if err := s.repo.EnsureDays(ctx, telegramID, days); err != nil {
		return nil, fmt.Errorf("failed to backfill days for user %d: %w", telegramID, err)
	}
	return u, nil
}

// SubmitReport validates and records a score for (today, slot).
func (s *CheckinService) SubmitReport(ctx context.Context, telegramID int64, day, slot string, score int) error {
	if score < checkin.MinScore || score > checkin.MaxScore {
		return ErrInvalidScore
	}
	if err := s.repo.InsertScore(ctx, telegramID, day, slot, score); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": telegramID,
		"day":     day,
		"slot":    slot,
	}).Info("Score recorded")
	return nil
}

// ScoresForDay returns the slot scores a user has recorded for one day.
func (s *CheckinService) ScoresForDay(ctx context.Context, telegramID int64, day string) (map[string]int, error) {
	return s.repo.ScoresForDay(ctx, telegramID, day)
}

// AppendNote records a free-form private note.
func (s *CheckinService) AppendNote(ctx context.Context, telegramID int64, at time.Time, body string) error {
	if err := s.repo.AppendNote(ctx, telegramID, at, body); err != nil {
		return fmt.Errorf("failed to append note for user %d: %w", telegramID, err)
	}
	s.logger.WithField("user_id", telegramID).Info("Note recorded")
	return nil
}

// Completeness reports whether the user has at least requiredDays day
// entries, and how many are still missing. Day presence gates reporting,
// not score presence: an empty backfilled day counts.
func (s *CheckinService) Completeness(ctx context.Context, telegramID int64, requiredDays int) (bool, int, error) {
	n, err := s.repo.CountDays(ctx, telegramID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count days for user %d: %w", telegramID, err)
	}
	if n >= requiredDays {
		return true, 0, nil
	}
	return false, requiredDays - n, nil
}

// TrendSeries computes the per-day average score over the user's most
// recent windowDays day entries, oldest first. Days with no scores are
// skipped rather than rendered as gaps. Returns ErrNoTrendData when every
// day in the window is empty.
func (s *CheckinService) TrendSeries(ctx context.Context, telegramID int64, windowDays int) ([]TrendPoint, error) {
	days, err := s.repo.RecentDays(ctx, telegramID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent days for user %d: %w", telegramID, err)
	}

	var series []TrendPoint
	for _, d := range days {
		if len(d.Scores) == 0 {
			continue
		}
		sum := 0
		for _, score := range d.Scores {
			sum += score
		}
		series = append(series, TrendPoint{
			Day:     d.Day,
			Average: float64(sum) / float64(len(d.Scores)),
		})
	}
	if len(series) == 0 {
		return nil, ErrNoTrendData
	}
	return series, nil
}
