package ports

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// CreateProjectInput describes a new project. Empty status and priority
// fall back to the configured project defaults.
type CreateProjectInput struct {
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	AssignedTo  string
	StartDate   *time.Time
	EndDate     *time.Time
}

type UpdateProjectInput struct {
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	AssignedTo  *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type ProjectService interface {
	Create(ctx context.Context, actor *domain.Account, in CreateProjectInput) (*domain.Project, error)
	List(ctx context.Context, actor *domain.Account) ([]*domain.Project, error)
	Get(ctx context.Context, actor *domain.Account, id string) (*domain.Project, error)
	Update(ctx context.Context, actor *domain.Account, id string, in UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, actor *domain.Account, id string) error
}
