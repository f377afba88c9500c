package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// ActivityFilter narrows activity queries. A nil Actors slice means any
// actor; an empty non-nil slice matches nothing.
type ActivityFilter struct {
	Actors     []string
	Action     domain.Action
	TargetType domain.TargetType
	Page       int
	Limit      int
}

// ActivityRepository is append-only.
type ActivityRepository interface {
	Append(ctx context.Context, e *domain.ActivityEntry) error
	List(ctx context.Context, f ActivityFilter) ([]*domain.ActivityEntry, int64, error)
	CountByAction(ctx context.Context, f ActivityFilter) ([]domain.ActionCount, error)
}
