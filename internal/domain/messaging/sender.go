package messaging

import "context"

// Sender delivers a text message to a recipient on the configured chat channel.
// Recipient is the channel-specific identity, a phone number or chat id.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// Handler turns one inbound text from a sender into the reply to send back.
type Handler interface {
	HandleMessage(ctx context.Context, senderID, text string) string
}
