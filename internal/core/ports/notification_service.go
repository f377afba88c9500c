package ports

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// CreateNotificationInput is the request to persist and dispatch one
// notification. Priority defaults to medium.
type CreateNotificationInput struct {
	Recipient      string
	Sender         string
	Type           domain.NotificationType
	Title          string
	Message        string
	RelatedProject string
	RelatedTask    string
	Priority       domain.NotificationPriority
	ScheduledFor   *time.Time
	Metadata       map[string]any
}

// Notifier is the write side used by other services and the sweeps.
type Notifier interface {
	Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error)
}

type NotificationPage struct {
	Items []*domain.Notification `json:"items"`
	Page  int                    `json:"page"`
	Pages int                    `json:"pages"`
	Total int64                  `json:"total"`
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, actor *domain.Account, q NotificationQuery) (*NotificationPage, error)
	MarkRead(ctx context.Context, actor *domain.Account, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, actor *domain.Account) (int64, error)
	Delete(ctx context.Context, actor *domain.Account, id string) error
	UnreadCount(ctx context.Context, actor *domain.Account) (int64, error)
	SendTestEmail(ctx context.Context, actor *domain.Account) (*domain.Notification, error)
}
