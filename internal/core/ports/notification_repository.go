package ports

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// NotificationQuery pages through one recipient's notifications, newest first.
type NotificationQuery struct {
	Page       int
	Limit      int
	UnreadOnly bool
}

// NotificationRepository scopes every read and write to a recipient, so a
// notification belonging to someone else behaves exactly like a missing one.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, recipient string, q NotificationQuery) ([]*domain.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipient string, at time.Time) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipient string, at time.Time) (int64, error)
	Delete(ctx context.Context, id, recipient string) error
	CountUnread(ctx context.Context, recipient string) (int64, error)
	MarkEmailSent(ctx context.Context, id string, at time.Time) error

	// ExistsSince reports whether recipient already has a notification of
	// type typ about taskID created at or after since. An empty taskID
	// matches any related task.
	ExistsSince(ctx context.Context, recipient string, typ domain.NotificationType, taskID string, since time.Time) (bool, error)
}
