// internal/infra/telegram/client.go
package telegram

import (
	"bytes"

	"gopkg.in/telebot.v3"

	"mood_checkin_bot/internal/domain/gateway"
)

// TelebotAdapter implements the gateway.Client interface using the
// gopkg.in/telebot.v3 library. This keeps the application logic decoupled
// from the specific bot library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

func (tba *TelebotAdapter) SendText(recipientID int64, text string) error {
	_, err := tba.bot.Send(&telebot.User{ID: recipientID}, text)
	return err
}

func (tba *TelebotAdapter) SendImage(recipientID int64, image []byte, caption string) error {
	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(image)),
		Caption: caption,
	}
	_, err := tba.bot.Send(&telebot.User{ID: recipientID}, photo)
	return err
}

func (tba *TelebotAdapter) SendMenu(recipientID int64, text string, menu gateway.Menu) error {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	var rows []telebot.Row
	for _, r := range menu {
		var btns []telebot.Btn
		for _, label := range r {
			btns = append(btns, markup.Text(label))
		}
		rows = append(rows, markup.Row(btns...))
	}
	markup.Reply(rows...)

	_, err := tba.bot.Send(&telebot.User{ID: recipientID}, text, &telebot.SendOptions{ReplyMarkup: markup})
	return err
}
