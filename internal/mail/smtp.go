package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"portfolio/internal/config"
)

const implicitTLSPort = 465

// SMTPMailer sends mail through an authenticated SMTP relay.
// The sender address is the account name, as Gmail requires.
type SMTPMailer struct {
	cfg config.EmailConfig
	log zerolog.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.EmailConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.SMTPHost == "" || m.cfg.User == "" || m.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	em, err := m.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(m.cfg.SMTPHost, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, em); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	em := gomail.NewMsg()
	if m.cfg.FromName != "" {
		if err := em.FromFormat(m.cfg.FromName, m.cfg.User); err != nil {
			return nil, fmt.Errorf("invalid sender address: %w", err)
		}
	} else if err := em.From(m.cfg.User); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := em.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	em.Subject(msg.Subject)
	em.SetDate()
	em.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		em.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return em, nil
}

func (m *SMTPMailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
	}
	if m.cfg.SMTPPort == implicitTLSPort {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	return opts
}
