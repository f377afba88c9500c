package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// CreateAccountInput provisions an account. Manager is only honoured when an
// admin creates a user; a manager always becomes the manager of users they create.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Manager  string
}

// UpdateAccountInput carries optional changes; nil fields are untouched.
type UpdateAccountInput struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	IsActive *bool
	Manager  *string
}

type AccountService interface {
	Create(ctx context.Context, actor *domain.Account, in CreateAccountInput) (*domain.Account, error)
	List(ctx context.Context, actor *domain.Account) ([]*domain.Account, error)
	Get(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error)
	Update(ctx context.Context, actor *domain.Account, id string, in UpdateAccountInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, actor *domain.Account, id, current, next string) error
	Deactivate(ctx context.Context, actor *domain.Account, id string) error
}
