package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Collection names.
const (
	collectionAccounts      = "accounts"
	collectionProjects      = "projects"
	collectionTasks         = "tasks"
	collectionNotifications = "notifications"
	collectionActivity      = "activity_logs"
	collectionSettings      = "settings"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Store groups the repositories that share one database.
type Store struct {
	Accounts      *AccountRepository
	Projects      *ProjectRepository
	Tasks         *TaskRepository
	Notifications *NotificationRepository
	Activity      *ActivityRepository
	Settings      *SettingsRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		Accounts:      NewAccountRepository(db),
		Projects:      NewProjectRepository(db),
		Tasks:         NewTaskRepository(db),
		Notifications: NewNotificationRepository(db),
		Activity:      NewActivityRepository(db),
		Settings:      NewSettingsRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	sets := []struct {
		col     *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{s.Accounts.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "manager", Value: 1}}},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
		}},
		{s.Projects.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}}},
		}},
		{s.Tasks.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "project", Value: 1}}},
			{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
		}},
		{s.Notifications.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "is_read", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "related_task", Value: 1}, {Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "scheduled_for", Value: 1}}},
		}},
		{s.Activity.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
	}
	for _, set := range sets {
		if _, err := set.col.Indexes().CreateMany(ctx, set.indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", set.col.Name(), err)
		}
	}
	return nil
}

// findAll runs a query and decodes every document.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// findOne decodes a single document, mapping a miss to notFound.
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M, notFound error) (*T, error) {
	var doc T
	if err := col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &doc, nil
}

// pageOptions sorts newest first and applies 1-based paging. limit <= 0
// disables paging.
// createdRange returns a created_at condition, or nil when unbounded.
func createdRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	cond := bson.M{}
	if from != nil {
		cond["$gte"] = from.UTC()
	}
	if to != nil {
		cond["$lte"] = to.UTC()
	}
	return cond
}

func pageOptions(page, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	return opts
}
