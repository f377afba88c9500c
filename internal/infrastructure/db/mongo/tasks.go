package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type TaskRepository struct {
	col *mongo.Collection
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return findOne[domain.Task](ctx, r.col, bson.M{"_id": id}, domain.ErrTaskNotFound)
}

func (r *TaskRepository) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	list, err := findAll[domain.Task](ctx, r.col, taskFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

func (r *TaskRepository) Count(ctx context.Context, f ports.TaskFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, taskFilter(f))
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"project": projectID})
	if err != nil {
		return 0, fmt.Errorf("delete project tasks: %w", err)
	}
	return res.DeletedCount, nil
}

func taskFilter(f ports.TaskFilter) bson.M {
	filter := bson.M{}
	project := bson.M{}
	if f.Project != "" {
		project["$eq"] = f.Project
	}
	if f.Projects != nil {
		project["$in"] = f.Projects
	}
	if len(project) > 0 {
		filter["project"] = project
	}
	if f.AssignedTo != "" {
		filter["assigned_to"] = f.AssignedTo
	}

	status := bson.M{}
	if f.Status != "" {
		status["$eq"] = f.Status
	}
	if f.ExcludeStatus != "" {
		status["$ne"] = f.ExcludeStatus
	}
	if len(status) > 0 {
		filter["status"] = status
	}

	due := bson.M{}
	if f.DueFrom != nil {
		due["$gte"] = f.DueFrom.UTC()
	}
	if f.DueTo != nil {
		due["$lte"] = f.DueTo.UTC()
	}
	if f.DueBefore != nil {
		due["$lt"] = f.DueBefore.UTC()
	}
	if len(due) > 0 {
		filter["due_date"] = due
	}

	if f.CompletedSince != nil {
		filter["completed_at"] = bson.M{"$gte": f.CompletedSince.UTC()}
	}
	if created := createdRange(f.CreatedFrom, f.CreatedTo); created != nil {
		filter["created_at"] = created
	}
	return filter
}
