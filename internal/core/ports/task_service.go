package ports

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

type CreateTaskInput struct {
	Project        string
	Title          string
	Description    string
	AssignedTo     string
	Status         domain.Status
	Priority       domain.Priority
	DueDate        *time.Time
	EstimatedHours float64
}

// UpdateTaskInput carries optional changes. Fields the actor's role may not
// touch are ignored.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	DueDate     *time.Time
	ActualHours *float64
}

type TaskQuery struct {
	Project string
	Status  domain.Status
}

type TaskService interface {
	Create(ctx context.Context, actor *domain.Account, in CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, actor *domain.Account, q TaskQuery) ([]*domain.Task, error)
	Get(ctx context.Context, actor *domain.Account, id string) (*domain.Task, error)
	Update(ctx context.Context, actor *domain.Account, id string, in UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, actor *domain.Account, id string) error
}
