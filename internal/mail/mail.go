// Package mail is the outbound message channel. Delivery is best-effort:
// callers persist their own state first and treat a send failure as a
// warning, never a rollback.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"calikart/internal/config"

	"github.com/rs/zerolog"
)

// Sender delivers a message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender implements Sender over plain-auth SMTP.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger zerolog.Logger
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg config.SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp_sender").Logger(),
	}
}

// Send delivers the message via SMTP. The ctx deadline is not propagated
// into net/smtp; callers must not hold database transactions open across
// this call.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		s.logger.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("smtp delivery failed")
		return fmt.Errorf("smtp delivery failed: %w", err)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}

// NopSender discards all messages. Used when SMTP is not configured.
type NopSender struct {
	logger zerolog.Logger
}

// NewNopSender creates a sender that logs and drops every message.
func NewNopSender(logger zerolog.Logger) *NopSender {
	return &NopSender{logger: logger.With().Str("component", "nop_sender").Logger()}
}

// Send logs the message and reports success.
func (s *NopSender) Send(_ context.Context, to, subject, _ string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("mail delivery skipped (SMTP not configured)")
	return nil
}
