package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier sends mail via unauthenticated SMTP (Mailpit-compatible).
type SMTPNotifier struct {
	addr string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(host, port, from string) *SMTPNotifier {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@autoshop.local"
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
		send: smtp.SendMail,
	}
}

func (n *SMTPNotifier) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notification %s has no recipient", msg.Template)
	}
	body := buildMessage(n.from, msg.To, msg.Subject(), msg.Body())
	return n.send(n.addr, nil, n.from, []string{msg.To}, []byte(body))
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
