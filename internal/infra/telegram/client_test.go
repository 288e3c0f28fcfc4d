package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

func TestParseChatID(t *testing.T) {
	id, err := parseChatID(" 123456789 ")
	require.NoError(t, err)
	assert.Equal(t, telebot.ChatID(123456789), id)

	id, err = parseChatID("-100200300")
	require.NoError(t, err)
	assert.Equal(t, "-100200300", id.Recipient())

	_, err = parseChatID("6281234@c.us")
	assert.Error(t, err)
}

func TestSenderKeyMatchesChatID(t *testing.T) {
	key := senderKey(42)

	id, err := parseChatID(key)
	require.NoError(t, err)
	assert.Equal(t, telebot.ChatID(42), id)
}
