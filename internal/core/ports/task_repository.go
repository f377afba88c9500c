package ports

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// TaskFilter narrows task queries. All set fields combine with AND.
type TaskFilter struct {
	Project    string
	Projects   []string
	AssignedTo string
	Status     domain.Status
	// ExcludeStatus drops tasks in this status.
	ExcludeStatus domain.Status
	// DueFrom and DueTo bound due_date inclusively; DueBefore is exclusive.
	DueFrom        *time.Time
	DueTo          *time.Time
	DueBefore      *time.Time
	CompletedSince *time.Time
	// CreatedFrom and CreatedTo bound created_at inclusively.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, f TaskFilter) ([]*domain.Task, error)
	Count(ctx context.Context, f TaskFilter) (int64, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}
