// Package mail dispatches outbound messages. Every backend reports delivery
// faults to the caller; nothing is retried or swallowed here.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yamdb/internal/config"
)

// ErrDelivery wraps every backend failure so callers can tell a mail fault
// apart from storage errors.
var ErrDelivery = errors.New("mail delivery failed")

type Message struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
	To      []string `json:"to"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the backend named by MAIL_BACKEND.
func New(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.MailBackend {
	case "log", "":
		return NewLogMailer(logger), nil
	case "smtp":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case "amqp":
		return NewAMQPMailer(cfg.AMQPURL, cfg.MailQueue), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.MailBackend)
	}
}

func deliveryError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDelivery, backend, err)
}

func validate(msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	if msg.From == "" {
		return errors.New("no sender")
	}
	return nil
}
