package email

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/onlyskins/onlyskins/internal/config"
)

// Sender sends transactional email over SMTP
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSender creates a new SMTP sender from configuration
func NewSender(cfg *config.SMTPConfig) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.FromEmail,
	}
}

// SendPasswordReset mails a password reset link to the given address
func (s *Sender) SendPasswordReset(to, resetLink string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your OnlySkins password")
	m.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset your password within the next hour using this link:\n%s\n\n"+
			"If you did not request this, you can ignore this email.", resetLink))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	log.Info().Str("to", to).Msg("Password reset email sent")
	return nil
}
