package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// NotificationRepository keys every lookup on _id and recipient together so
// foreign notifications are indistinguishable from missing ones.
type NotificationRepository struct {
	col *mongo.Collection
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, recipient string, q ports.NotificationQuery) ([]*domain.Notification, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"recipient": recipient}
	if q.UnreadOnly {
		filter["is_read"] = false
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	list, err := findAll[domain.Notification](ctx, r.col, filter, pageOptions(q.Page, q.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return list, total, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipient string, at time.Time) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "recipient": recipient}
	// Re-marking keeps the original read_at.
	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at.UTC()}}); err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return findOne[domain.Notification](ctx, r.col, filter, domain.ErrNotificationNotFound)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient string, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx, bson.M{"recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, recipient string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "recipient": recipient})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
}

func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"email_sent": true, "email_sent_at": at.UTC()}})
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) ExistsSince(ctx context.Context, recipient string, typ domain.NotificationType, taskID string, since time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"recipient":  recipient,
		"type":       typ,
		"created_at": bson.M{"$gte": since.UTC()},
	}
	if taskID != "" {
		filter["related_task"] = taskID
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check notification window: %w", err)
	}
	return n > 0, nil
}
