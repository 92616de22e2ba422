package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"mood_checkin_bot/internal/domain/checkin"
	"mood_checkin_bot/internal/domain/gateway"
	"mood_checkin_bot/internal/domain/schedule"
)

// ReminderService emits check-in reminders. It is driven by a once-per-
// minute tick and only acts when the wall clock sits exactly on a slot's
// trigger hour at minute zero, so delivery is at-most-once per
// (user, slot, day): a missed tick skips that slot for the day, there is
// no catch-up.
type ReminderService struct {
	repo   checkin.Repository
	gw     gateway.Client
	sched  *schedule.Schedule
	logger *logrus.Entry
	now    func() time.Time
}

func NewReminderService(repo checkin.Repository, gw gateway.Client, sched *schedule.Schedule, logger *logrus.Entry) *ReminderService {
	return &ReminderService{
		repo:   repo,
		gw:     gw,
		sched:  sched,
		logger: logger,
		now:    time.Now,
	}
}

// Tick checks whether a slot triggers right now and reminds every user
// who has not recorded that slot yet today. The report store itself is
// the dedupe signal: once a score exists, reminders for the pair stop.
// Failures for one user are logged and skipped, never halting the tick.
func (s *ReminderService) Tick(ctx context.Context) {
	now := s.now()
	if now.Minute() != 0 {
		return
	}
	slot := s.sched.SlotAt(now)
	if slot == nil {
		return
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list users for reminder tick")
		return
	}

	day := now.Format(checkin.DayFormat)
	tickLogger := s.logger.WithFields(logrus.Fields{"slot": slot.Name, "day": day})
	tickLogger.WithField("users", len(users)).Info("Reminder tick")

	for _, u := range users {
		has, err := s.repo.HasScore(ctx, u.TelegramID, day, slot.Name)
		if err != nil {
			tickLogger.WithError(err).WithField("user_id", u.TelegramID).Error("Failed to check existing score")
			continue
		}
		if has {
			continue
		}
		text := fmt.Sprintf("Time to record your mood. Slot: %s. Reply with a score from 1 to 10.", slot.Name)
		if err := s.gw.SendText(u.TelegramID, text); err != nil {
			tickLogger.WithError(err).WithField("user_id", u.TelegramID).Warn("Failed to send reminder")
		}
	}
}
