package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// SMTPConfig carries the mail server credentials, read from process configuration.
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	SubjectPrefix string
}

// SMTPNotifier delivers notifications as plain-text email.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier constructs an SMTP notifier.
func NewSMTPNotifier(cfg SMTPConfig, logger zerolog.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}

	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp_notifier").Logger(),
	}, nil
}

// Send dials the server and sends one message.
func (s *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", subjectWithPrefix(s.cfg.SubjectPrefix, msg.Subject))
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp notification: %w", err)
	}

	s.logger.Debug().Str("to", maskEmailAddress(msg.To)).Msg("email sent")
	return nil
}
