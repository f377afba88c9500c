package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
	"github.com/projecthub/pm-system/internal/pkg/metrics"
)

const defaultMailTimeout = 10 * time.Second

// NotificationService persists notifications and dispatches their email.
type NotificationService struct {
	repo        ports.NotificationRepository
	accounts    ports.AccountRepository
	settings    ports.SettingsProvider
	mailer      ports.Mailer
	renderer    *EmailRenderer
	mailTimeout time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewNotificationService(
	repo ports.NotificationRepository,
	accounts ports.AccountRepository,
	settings ports.SettingsProvider,
	mailer ports.Mailer,
	renderer *EmailRenderer,
	mailTimeout time.Duration,
	log zerolog.Logger,
) *NotificationService {
	if mailTimeout <= 0 {
		mailTimeout = defaultMailTimeout
	}
	return &NotificationService{
		repo:        repo,
		accounts:    accounts,
		settings:    settings,
		mailer:      mailer,
		renderer:    renderer,
		mailTimeout: mailTimeout,
		log:         log,
		now:         time.Now,
	}
}

// Create persists a notification and then attempts email delivery. Only a
// rejected input or a failed store write is returned; email problems are
// logged and leave EmailSent false.
func (s *NotificationService) Create(ctx context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	if err := validateNotification(&in); err != nil {
		return nil, err
	}

	n := &domain.Notification{
		ID:             newID(),
		Recipient:      in.Recipient,
		Sender:         in.Sender,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		RelatedProject: in.RelatedProject,
		RelatedTask:    in.RelatedTask,
		Priority:       in.Priority,
		ScheduledFor:   in.ScheduledFor,
		Metadata:       in.Metadata,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(n.Type)).Inc()

	s.dispatchEmail(ctx, n)
	return n, nil
}

func validateNotification(in *ports.CreateNotificationInput) error {
	if in.Recipient == "" {
		return domain.Invalid("recipient", "is required")
	}
	if !in.Type.Valid() {
		return domain.Invalid("type", fmt.Sprintf("unknown notification type %q", in.Type))
	}
	if in.Title == "" {
		return domain.Invalid("title", "is required")
	}
	if in.Message == "" {
		return domain.Invalid("message", "is required")
	}
	if in.Priority == "" {
		in.Priority = domain.NotificationPriorityMedium
	}
	if !in.Priority.Valid() {
		return domain.Invalid("priority", "must be low, medium, high or urgent")
	}
	return nil
}

func (s *NotificationService) dispatchEmail(ctx context.Context, n *domain.Notification) {
	log := s.log.With().
		Str("notification_id", n.ID).
		Str("recipient", n.Recipient).
		Str("type", string(n.Type)).
		Logger()

	recipient, err := s.accounts.FindByID(ctx, n.Recipient)
	if err != nil {
		log.Warn().Err(err).Msg("email skipped: recipient not resolvable")
		return
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("email skipped: settings unavailable")
		return
	}
	if recipient.Email == "" || !ShouldSendEmail(settings.Notifications, recipient, n.Type) {
		metrics.EmailsTotal.WithLabelValues(string(n.Type), "skipped").Inc()
		return
	}

	subject, body, err := s.renderer.Render(n)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(string(n.Type), "unrendered").Inc()
		log.Error().Err(err).Msg("email template failed")
		return
	}

	if err := s.send(ctx, recipient.Email, subject, body); err != nil {
		metrics.EmailsTotal.WithLabelValues(string(n.Type), "failed").Inc()
		log.Warn().Err(err).Msg("email send failed")
		return
	}
	metrics.EmailsTotal.WithLabelValues(string(n.Type), "sent").Inc()

	sentAt := s.now().UTC()
	if err := s.repo.MarkEmailSent(ctx, n.ID, sentAt); err != nil {
		log.Warn().Err(err).Msg("failed to flag notification as emailed")
		return
	}
	n.EmailSent = true
	n.EmailSentAt = &sentAt
}

// send bounds the mailer call by mailTimeout even if the mailer ignores ctx.
func (s *NotificationService) send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.mailer.Send(ctx, to, subject, body)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send mail: %w", ctx.Err())
	}
}

func (s *NotificationService) List(ctx context.Context, actor *domain.Account, q ports.NotificationQuery) (*ports.NotificationPage, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	items, total, err := s.repo.List(ctx, actor.ID, ports.NotificationQuery{Page: page, Limit: limit, UnreadOnly: q.UnreadOnly})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return &ports.NotificationPage{Items: items, Page: page, Pages: pageCount(total, limit), Total: total}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor *domain.Account, id string) (*domain.Notification, error) {
	return s.repo.MarkRead(ctx, id, actor.ID, s.now().UTC())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor *domain.Account) (int64, error) {
	return s.repo.MarkAllRead(ctx, actor.ID, s.now().UTC())
}

func (s *NotificationService) Delete(ctx context.Context, actor *domain.Account, id string) error {
	return s.repo.Delete(ctx, id, actor.ID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor *domain.Account) (int64, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}

// SendTestEmail sends a system update to the calling admin.
func (s *NotificationService) SendTestEmail(ctx context.Context, actor *domain.Account) (*domain.Notification, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, &permission.DeniedError{Reason: permission.ReasonRoleNotAllowed}
	}
	return s.Create(ctx, ports.CreateNotificationInput{
		Recipient: actor.ID,
		Type:      domain.NotificationSystemUpdate,
		Title:     "Test Email",
		Message:   "This is a test email to verify that notification delivery is configured correctly.",
		Priority:  domain.NotificationPriorityLow,
	})
}
