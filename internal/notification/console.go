package notification

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleSender writes messages to the operator log instead of delivering
// them. It is the channel of last resort.
type ConsoleSender struct {
	Logger *zap.Logger
}

func (s ConsoleSender) Send(_ context.Context, msg Message) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.Warn("[DEV MODE] "+msg.Subject,
		zap.String("to", msg.To),
		zap.String("event", msg.Event),
		zap.String("text", msg.Text),
	)
	return nil
}
