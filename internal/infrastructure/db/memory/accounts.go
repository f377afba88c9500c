package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/ports"
)

type AccountRepository struct {
	s *Store
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return domain.ErrAccountExists
		}
	}
	ensureID(&a.ID)
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) List(_ context.Context, f ports.AccountFilter) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Account, 0)
	for _, a := range r.s.accounts {
		if f.ActiveOnly && !a.IsActive {
			continue
		}
		if f.ManagedBy != "" && !a.ManagedBy(f.ManagedBy) {
			continue
		}
		if len(f.Roles) > 0 && !hasRole(f.Roles, a.Role) {
			continue
		}
		found := a
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AccountRepository) Update(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[a.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	for id, existing := range r.s.accounts {
		if id != a.ID && strings.EqualFold(existing.Email, a.Email) {
			return domain.ErrAccountExists
		}
	}
	r.s.accounts[a.ID] = *a
	return nil
}

func hasRole(roles []domain.Role, r domain.Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
