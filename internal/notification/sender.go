// Package notification delivers OTP codes and alert broadcasts through
// email, webhook, telegram or the operator log.
package notification

import "context"

const (
	ChannelEmail    = "email"
	ChannelWebhook  = "webhook"
	ChannelTelegram = "telegram"
	ChannelConsole  = "console"
)

type Message struct {
	Channel string
	To      string
	Subject string
	Text    string
	HTML    string
	Event   string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
