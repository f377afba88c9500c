package memory

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type NotificationRepository struct {
	s *Store
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ensureID(&n.ID)
	stored := *n
	stored.Metadata = cloneMeta(n.Metadata)
	r.s.notifications[n.ID] = stored
	return nil
}

func (r *NotificationRepository) List(_ context.Context, recipient string, q ports.NotificationQuery) ([]*domain.Notification, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]*domain.Notification, 0)
	for _, n := range r.s.notifications {
		if n.Recipient != recipient || (q.UnreadOnly && n.IsRead) {
			continue
		}
		found := n
		all = append(all, &found)
	}
	sortNewestFirst(all, func(n *domain.Notification) int64 { return n.CreatedAt.UnixNano() })
	return page(all, q.Page, q.Limit), int64(len(all)), nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id, recipient string, at time.Time) (*domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.Recipient != recipient {
		return nil, domain.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &at
		r.s.notifications[id] = n
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipient string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, notif := range r.s.notifications {
		if notif.Recipient != recipient || notif.IsRead {
			continue
		}
		notif.IsRead = true
		notif.ReadAt = &at
		r.s.notifications[id] = notif
		n++
	}
	return n, nil
}

func (r *NotificationRepository) Delete(_ context.Context, id, recipient string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.Recipient != recipient {
		return domain.ErrNotificationNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipient string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, notif := range r.s.notifications {
		if notif.Recipient == recipient && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkEmailSent(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.EmailSent = true
	n.EmailSentAt = &at
	r.s.notifications[id] = n
	return nil
}

func (r *NotificationRepository) ExistsSince(_ context.Context, recipient string, typ domain.NotificationType, taskID string, since time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, n := range r.s.notifications {
		if n.Recipient != recipient || n.Type != typ || n.CreatedAt.Before(since) {
			continue
		}
		if taskID == "" || n.RelatedTask == taskID {
			return true, nil
		}
	}
	return false, nil
}

// All returns every stored notification, newest first. Test helper.
func (r *NotificationRepository) All() []*domain.Notification {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Notification, 0, len(r.s.notifications))
	for _, n := range r.s.notifications {
		found := n
		out = append(out, &found)
	}
	sortNewestFirst(out, func(n *domain.Notification) int64 { return n.CreatedAt.UnixNano() })
	return out
}
