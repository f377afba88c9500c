package ports

import (
	"context"

	"github.com/projecthub/pm-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	Logout(ctx context.Context, actor *domain.Account)
	// Authenticate resolves a token subject to an active account.
	Authenticate(ctx context.Context, accountID string) (*domain.Account, error)
}
