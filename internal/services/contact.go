package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfolio/internal/config"
	"portfolio/internal/domain"
	"portfolio/internal/mail"
	"portfolio/internal/metrics"
	"portfolio/internal/store"
	apperrors "portfolio/pkg/errors"
)

// ContactOptions configures a ContactService.
type ContactOptions struct {
	// Recipient receives the owner notification.
	Recipient string
	// OwnerName signs the auto-reply. Optional.
	OwnerName string
	// PersistFailurePolicy is config.PersistAbort or config.PersistContinue.
	PersistFailurePolicy string
	StoreTimeout         time.Duration
	MailTimeout          time.Duration

	Now   func() time.Time
	NewID func() string
}

// SubmitResult is returned for a fully delivered submission.
type SubmitResult struct {
	Message string `json:"message"`
}

// ContactService implements the contact service
type ContactService struct {
	store    store.Store
	mailer   mail.Mailer
	opts     ContactOptions
	validate *validator.Validate
	log      zerolog.Logger
}

// NewContactService creates a new contact service. st may be nil, in which
// case submissions are only mailed and listing reports the store as
// unavailable.
func NewContactService(st store.Store, mailer mail.Mailer, opts ContactOptions, log zerolog.Logger) *ContactService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.PersistFailurePolicy == "" {
		opts.PersistFailurePolicy = config.PersistAbort
	}
	return &ContactService{
		store:    st,
		mailer:   mailer,
		opts:     opts,
		validate: newValidator(),
		log:      log,
	}
}

// Submit validates a submission, stores it when a record store is
// reachable and sends the owner notification followed by the auto-reply.
// Every call persists and mails again; there is no deduplication.
func (s *ContactService) Submit(ctx context.Context, p *domain.Submission) (*SubmitResult, error) {
	sub := p.Normalize()

	if err := validateSubmission(s.validate, sub); err != nil {
		s.log.Info().Err(err).Msg("submit rejected")
		metrics.RecordContactSubmission("invalid")
		return nil, err
	}

	contact := &domain.Contact{
		ID:        s.opts.NewID(),
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
		CreatedAt: s.opts.Now().UTC(),
		Status:    domain.StatusNew,
	}
	log := s.log.With().Str("contact_id", contact.ID).Logger()

	if err := s.persist(ctx, contact, log); err != nil {
		log.Error().Err(err).Msg("submit failed: record store write")
		metrics.RecordContactSubmission("store_failed")
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, MsgDeliveryFailed, err)
	}

	if err := s.deliver(ctx, contact); err != nil {
		log.Error().Err(err).Msg("submit failed: mail delivery")
		metrics.RecordContactSubmission("delivery_failed")
		return nil, apperrors.Wrap(apperrors.ErrCodeDelivery, MsgDeliveryFailed, err)
	}

	log.Info().Msg("emails sent")
	metrics.RecordContactSubmission("success")
	return &SubmitResult{Message: MsgSubmitted}, nil
}

// persist writes the record if a store is configured and reachable.
// A write error is returned only under the abort policy.
func (s *ContactService) persist(ctx context.Context, c *domain.Contact, log zerolog.Logger) error {
	if s.store == nil {
		return nil
	}

	ctx, cancel := withTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("record store unreachable, submission not saved")
		return nil
	}

	if err := s.store.Create(ctx, c); err != nil {
		if s.opts.PersistFailurePolicy == config.PersistContinue {
			log.Warn().Err(err).Msg("record store write failed, continuing with mail")
			return nil
		}
		return err
	}

	log.Info().Msg("message saved to database")
	return nil
}

// deliver sends the two messages in order; the auto-reply is only tried
// once the owner notification went out.
func (s *ContactService) deliver(ctx context.Context, c *domain.Contact) error {
	owner, err := mail.OwnerNotification(s.opts.Recipient, c, s.opts.Now())
	if err != nil {
		return err
	}
	reply, err := mail.AutoReply(c, s.opts.OwnerName)
	if err != nil {
		return err
	}

	if err := s.send(ctx, "owner", owner); err != nil {
		return fmt.Errorf("owner notification: %w", err)
	}
	if err := s.send(ctx, "auto_reply", reply); err != nil {
		return fmt.Errorf("auto-reply: %w", err)
	}
	return nil
}

func (s *ContactService) send(ctx context.Context, kind string, msg mail.Message) error {
	ctx, cancel := withTimeout(ctx, s.opts.MailTimeout)
	defer cancel()

	err := s.mailer.Send(ctx, msg)
	metrics.RecordMailSend(kind, err)
	return err
}

// List returns every stored submission, newest first.
func (s *ContactService) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	if s.store == nil {
		return nil, apperrors.New(apperrors.ErrCodePersistenceUnavailable, MsgDatabaseNotConnected)
	}

	ctx, cancel := withTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodePersistenceUnavailable, MsgDatabaseNotConnected, err)
	}

	contacts, err := s.store.List(ctx, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list failed")
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, MsgFetchFailed, err)
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}

	s.log.Debug().Int("count", len(contacts)).Msg("list successful")
	return contacts, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
