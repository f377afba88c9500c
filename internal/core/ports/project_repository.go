package ports

import (
	"context"
	"time"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// ProjectFilter narrows project queries. When both AssignedTo and IDs are
// set they combine with OR; every other field combines with AND.
type ProjectFilter struct {
	AssignedTo string
	IDs        []string
	Statuses   []domain.Status
	// CreatedFrom and CreatedTo bound created_at inclusively.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error)
	Count(ctx context.Context, f ProjectFilter) (int64, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}
