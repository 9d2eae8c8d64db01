package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridConfig configures the SendGrid notifier.
type SendgridConfig struct {
	APIKey        string
	From          string
	FromName      string
	SubjectPrefix string
	Host          string
}

// SendgridNotifier delivers notifications through the SendGrid v3 API.
type SendgridNotifier struct {
	cfg    SendgridConfig
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendgridNotifier constructs a SendGrid notifier.
func NewSendgridNotifier(cfg SendgridConfig, logger zerolog.Logger) (*SendgridNotifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sendgrid sender address is required")
	}
	if cfg.Host == "" {
		cfg.Host = sendgridHost
	}

	return &SendgridNotifier{
		cfg:    cfg,
		from:   sgmail.NewEmail(cfg.FromName, cfg.From),
		logger: logger.With().Str("component", "sendgrid_notifier").Logger(),
	}, nil
}

// Send posts a single plain-text email.
func (s *SendgridNotifier) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p := sgmail.NewPersonalization()
	p.Subject = subjectWithPrefix(s.cfg.SubjectPrefix, msg.Subject)
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))

	req := sendgrid.GetRequest(s.cfg.APIKey, sendgridEndpoint, s.cfg.Host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("send sendgrid notification: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send sendgrid notification: status %d: %s", res.StatusCode, res.Body)
	}

	s.logger.Debug().Str("to", maskEmailAddress(msg.To)).Int("status", res.StatusCode).Msg("email sent")
	return nil
}
