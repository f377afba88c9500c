package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type ActivityRepository struct {
	col *mongo.Collection
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

func (r *ActivityRepository) Append(ctx context.Context, e *domain.ActivityEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, f ports.ActivityFilter) ([]*domain.ActivityEntry, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := activityFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}
	list, err := findAll[domain.ActivityEntry](ctx, r.col, filter, pageOptions(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	return list, total, nil
}

// CountByAction groups matching entries by action, most frequent first.
func (r *ActivityRepository) CountByAction(ctx context.Context, f ports.ActivityFilter) ([]domain.ActionCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: activityFilter(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$action"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate activity: %w", err)
	}
	out := make([]domain.ActionCount, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode activity counts: %w", err)
	}
	return out, nil
}

func activityFilter(f ports.ActivityFilter) bson.M {
	filter := bson.M{}
	if f.Actors != nil {
		filter["actor"] = bson.M{"$in": f.Actors}
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.TargetType != "" {
		filter["target_type"] = f.TargetType
	}
	return filter
}
