package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/twilightpharmacy/booking-backend/pkg/config"
)

// EmailSender delivers transactional email over SMTP. Without SMTP
// configuration it runs in no-op mode: messages are logged, never sent,
// and Send reports success so booking flows are unaffected.
type EmailSender struct {
	cfg *config.SMTPConfig
}

// NewEmailSender creates a new email sender
func NewEmailSender(cfg *config.SMTPConfig) *EmailSender {
	if !cfg.Enabled() {
		log.Warn().Msg("SMTP not configured, email sender running in no-op mode")
	}
	return &EmailSender{cfg: cfg}
}

// Send delivers a single HTML email
func (s *EmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !s.cfg.Enabled() {
		log.Info().Str("to", to).Str("subject", subject).Msg("mail noop")
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", to, err)
		}
		return nil
	}
}
