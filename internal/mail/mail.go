// Package mail is the outbound mail channel: the notification sent to the
// site owner and the auto-reply sent to the visitor.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is one outbound email. Text is always sent; HTML is attached as
// an alternative part when set.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs what it would have sent. Used when email is disabled.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a mailer that writes to log instead of SMTP.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email disabled, message not sent")
	return nil
}
