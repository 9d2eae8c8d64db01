package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher is the subset of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

type natsEvent struct {
	Message
	SentAt time.Time `json:"sent_at"`
}

// NATSNotifier publishes notifications as JSON events for downstream consumers.
type NATSNotifier struct {
	publisher Publisher
	subject   string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewNATSNotifier constructs a notifier publishing on subject.
func NewNATSNotifier(publisher Publisher, subject string, logger zerolog.Logger) (*NATSNotifier, error) {
	if publisher == nil {
		return nil, fmt.Errorf("nats publisher is required")
	}
	if subject == "" {
		subject = "review.notifications"
	}
	return &NATSNotifier{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "nats_notifier").Logger(),
		now:       time.Now,
	}, nil
}

// Send publishes the message; delivery is at-most-once.
func (n *NATSNotifier) Send(_ context.Context, msg Message) error {
	payload, err := json.Marshal(natsEvent{Message: msg, SentAt: n.now().UTC()})
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("publish nats notification: %w", err)
	}
	n.logger.Debug().Str("subject", n.subject).Msg("notification published")
	return nil
}
