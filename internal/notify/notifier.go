// Package notify delivers report summaries over email.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/config"
)

// EmailNotifier sends plain-text messages through a configured SMTP relay.
type EmailNotifier struct {
	cfg  config.EmailConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	log  zerolog.Logger
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg config.EmailConfig, log zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:  cfg,
		send: smtp.SendMail,
		log:  log.With().Str("component", "email_notifier").Logger(),
	}
}

// Send delivers one message to every configured recipient.
func (n *EmailNotifier) Send(subject, body string) error {
	if !n.cfg.Enabled() {
		return fmt.Errorf("email notifications are not configured")
	}

	msg := buildMessage(n.cfg.Sender, n.cfg.Recipients, subject, body)
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)

	var auth smtp.Auth
	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
	}

	if err := n.send(addr, auth, n.cfg.Sender, n.cfg.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.log.Info().
		Str("subject", subject).
		Int("recipients", len(n.cfg.Recipients)).
		Msg("Email sent")

	return nil
}

// buildMessage assembles an RFC 5322 plain-text message.
func buildMessage(sender string, recipients []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(recipients, ","))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
