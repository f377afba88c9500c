package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// AccountFilter narrows AccountRepository.List. Zero values match everything.
type AccountFilter struct {
	// ManagedBy matches accounts whose manager or created_by is this id.
	ManagedBy  string
	Roles      []domain.Role
	ActiveOnly bool
}

// AccountRepository persists accounts. Lookups of a missing account return
// domain.ErrAccountNotFound; creating a duplicate email returns
// domain.ErrAccountExists.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, f AccountFilter) ([]*domain.Account, error)
	Update(ctx context.Context, a *domain.Account) error
}
