package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoRecipient indicates a message was dispatched without a destination address.
var ErrNoRecipient = errors.New("notification recipient is required")

// Message is a fire-and-forget notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers messages to an outbound channel.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Multi fans a message out to every configured notifier and joins their errors.
type Multi []Notifier

// Send delivers msg through all notifiers, attempting each exactly once.
func (m Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validate(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

func subjectWithPrefix(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return fmt.Sprintf("[%s] %s", prefix, subject)
}
