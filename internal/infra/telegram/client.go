package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements messaging.Sender using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// Send delivers text to the chat whose numeric id is recipient.
func (tba *TelebotAdapter) Send(ctx context.Context, recipient, text string) error {
	chatID, err := parseChatID(recipient)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = tba.bot.Send(chatID, text, &telebot.SendOptions{})
	return err
}

func parseChatID(recipient string) (telebot.ChatID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(recipient), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram recipient %q is not a chat id: %w", recipient, err)
	}
	return telebot.ChatID(id), nil
}
