package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// ActivityRecorder appends audit entries. Record never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID string, action domain.Action, target domain.TargetType, targetID, description string, metadata map[string]any)
}

type ActivityQuery struct {
	Action     domain.Action
	TargetType domain.TargetType
	Page       int
	Limit      int
}

type ActivityPage struct {
	Items []*domain.ActivityEntry `json:"items"`
	Page  int                     `json:"page"`
	Pages int                     `json:"pages"`
	Total int64                   `json:"total"`
}

type ActivityStats struct {
	ByAction []domain.ActionCount    `json:"by_action"`
	Recent   []*domain.ActivityEntry `json:"recent"`
}

type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, actor *domain.Account, q ActivityQuery) (*ActivityPage, error)
	Stats(ctx context.Context, actor *domain.Account) (*ActivityStats, error)
}
