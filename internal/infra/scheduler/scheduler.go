package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mood_checkin_bot/internal/app"
)

// Every minute. Slot matching happens inside the tick, which keeps the
// cron wiring trivial and shutdown clean.
const tickSpec = "* * * * *"

// ReminderScheduler drives the reminder tick on a one-minute cadence.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	reminders  *app.ReminderService
	logger     *logrus.Entry
}

func NewReminderScheduler(reminders *app.ReminderService, logger *logrus.Entry) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // slots are defined in server-local hours
		reminders:  reminders,
		logger:     logger,
	}
}

func (s *ReminderScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(tickSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		s.reminders.Tick(ctx)
	})
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started")
	return nil
}

// Stop halts new ticks and waits for the in-flight one to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler stopped")
}
