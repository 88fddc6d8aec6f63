package mail

import (
	"context"
	"log/slog"
	"strings"
)

// LogMailer writes messages to the logger instead of delivering them.
// Development backend.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return deliveryError("log", err)
	}
	m.logger.InfoContext(ctx, "outbound mail",
		"from", msg.From,
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
