package telegram

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"mood_checkin_bot/internal/app"
)

// RegisterHandlers wires inbound updates into the conversation state
// machine. Routing syntax lives in the state machine itself; the
// transport layer only forwards (user id, display name, text).
func RegisterHandlers(ctx context.Context, b *telebot.Bot, conv *app.ConversationService, baseLogger *logrus.Entry) {
	b.Handle("/start", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{
			"handler":   "/start",
			"sender_id": c.Sender().ID,
		}).Info("Command received")
		conv.HandleStart(ctx, c.Sender().ID, displayName(c.Sender()))
		return nil
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		conv.HandleText(ctx, c.Sender().ID, displayName(c.Sender()), c.Text())
		return nil
	})
}

func displayName(u *telebot.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
