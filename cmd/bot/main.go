package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"mood_checkin_bot/internal/app"
	"mood_checkin_bot/internal/domain/session"
	"mood_checkin_bot/internal/infra/chart"
	"mood_checkin_bot/internal/infra/config"
	idb "mood_checkin_bot/internal/infra/database"
	"mood_checkin_bot/internal/infra/health"
	"mood_checkin_bot/internal/infra/logger"
	"mood_checkin_bot/internal/infra/scheduler"
	"mood_checkin_bot/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Super-admin ID: %d", cfg.LogLevel, cfg.Environment, cfg.AdminTelegramID)

	sched, err := config.LoadSchedule(cfg.SlotsFile)
	if err != nil {
		log.Fatalf("FATAL: Could not load slot schedule: %v", err)
	}
	log.Infof("Slot schedule loaded with %d slots.", len(sched.Slots()))

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := idb.Migrate(db); err != nil {
		log.Fatalf("FATAL: Could not apply database schema: %v", err)
	}
	repo := idb.NewPostgresCheckinRepository(db)
	log.Info("Database ready, check-in repository initialized.")

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram update failed")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	gw := telegram.NewTelebotAdapter(bot)

	// Services
	baseLogger := logger.Get().WithField("app", "mood_checkin_bot")
	checkins := app.NewCheckinService(repo, baseLogger.WithField("component", "checkin"))
	admins := app.NewAdminService(repo, gw, cfg.AdminTelegramID, cfg.AdminSecret, baseLogger.WithField("component", "admin"))
	conv := app.NewConversationService(
		checkins,
		admins,
		session.NewStore(),
		sched,
		gw,
		chart.NewPNGRenderer(),
		cfg.ChartWindowDays,
		baseLogger.WithField("component", "conversation"),
	)
	reminders := app.NewReminderService(repo, gw, sched, baseLogger.WithField("component", "reminder"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	remScheduler := scheduler.NewReminderScheduler(reminders, baseLogger.WithField("component", "scheduler"))
	if err := remScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start reminder scheduler: %v", err)
	}

	// Handlers
	telegram.RegisterHandlers(ctx, bot, conv, baseLogger.WithField("component", "handlers"))
	log.Info("Telegram handlers registered.")

	// Liveness probe
	probe := health.NewServer(cfg.HealthAddr)
	go func() {
		if err := probe.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Liveness probe server failed")
		}
	}()
	log.Infof("Liveness probe listening on %s.", cfg.HealthAddr)

	log.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	bot.Stop()
	remScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := probe.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Liveness probe shutdown failed")
	}
	log.Info("Application shut down gracefully.")
}
