package queue

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/alumni-connect/internal/config"
)

// SMTPMailer sends HTML mail through the configured SMTP server.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &SMTPMailer{dialer: d, from: cfg.From}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

// RenderEmail builds the subject and HTML body for a notification.
func RenderEmail(ev NotificationCreatedEvent) (string, string) {
	name := ev.RecipientName
	if name == "" {
		name = "there"
	}
	subject := "Alumni Connect: " + ev.Title
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p><p><small>You received this because of activity on your Alumni Connect account.</small></p>",
		html.EscapeString(name), html.EscapeString(ev.Message))
	return subject, body
}
