package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the structured log instead of delivering them.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a logging notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "log_notifier").Logger()}
}

// Send logs the message and never fails.
func (l *LogNotifier) Send(_ context.Context, msg Message) error {
	l.logger.Info().
		Str("to", maskEmailAddress(msg.To)).
		Str("subject", msg.Subject).
		Int("body_length", len(msg.Body)).
		Msg("notification recorded")
	return nil
}
