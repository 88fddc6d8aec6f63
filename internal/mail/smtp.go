package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer relays messages through an SMTP server.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	var a smtp.Auth
	if username != "" {
		a = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		auth: a,
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return deliveryError("smtp", err)
	}
	if err := ctx.Err(); err != nil {
		return deliveryError("smtp", err)
	}
	if err := m.send(m.addr, m.auth, msg.From, msg.To, formatMessage(msg)); err != nil {
		return deliveryError("smtp", err)
	}
	return nil
}

func formatMessage(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
