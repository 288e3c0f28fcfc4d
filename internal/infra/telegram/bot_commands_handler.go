package telegram

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"task_reminder_bot/internal/domain/messaging"
)

// menuCommands reset the conversation like typing "menu".
var menuCommands = []string{"/start", "/menu"}

// NewBot creates a long-polling bot.
func NewBot(token string, baseLogger *logrus.Entry) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logCtx := baseLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				logCtx = logCtx.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			logCtx.Error("Telegram handler error")
		},
	}
	return telebot.NewBot(pref)
}

// RegisterBotCommands routes every private text message to the conversation handler.
func RegisterBotCommands(ctx context.Context, b *telebot.Bot, handler messaging.Handler, baseLogger *logrus.Entry) {
	for _, cmd := range menuCommands {
		command := cmd
		b.Handle(command, func(c telebot.Context) error {
			return reply(ctx, c, handler, baseLogger.WithField("command", command), "menu")
		})
	}

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		return reply(ctx, c, handler, baseLogger.WithField("handler", "text"), c.Text())
	})
}

func reply(ctx context.Context, c telebot.Context, handler messaging.Handler, logCtx *logrus.Entry, text string) error {
	if c.Sender() == nil || c.Chat() == nil || c.Chat().Type != telebot.ChatPrivate {
		return nil
	}
	senderID := senderKey(c.Chat().ID)
	logCtx.WithField("sender_id", senderID).Debug("Message received")

	answer := handler.HandleMessage(ctx, senderID, text)
	if answer == "" {
		return nil
	}
	return c.Send(answer)
}

// senderKey is the session and reminder identity of a private chat.
func senderKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Run polls until ctx is cancelled.
func Run(ctx context.Context, b *telebot.Bot, logger *logrus.Entry) error {
	go b.Start()
	logger.Info("Telegram bot polling started")

	<-ctx.Done()
	b.Stop()
	logger.Info("Telegram bot stopped")
	return nil
}
