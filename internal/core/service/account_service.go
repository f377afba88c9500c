package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
)

// AccountService provisions and administers accounts within the
// admin → manager → user hierarchy.
type AccountService struct {
	repo     ports.AccountRepository
	activity ports.ActivityRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountService(repo ports.AccountRepository, activity ports.ActivityRecorder, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, activity: activity, log: log, now: time.Now}
}

func (s *AccountService) Create(ctx context.Context, actor *domain.Account, in ports.CreateAccountInput) (*domain.Account, error) {
	if err := authorize(actor, permission.ActionCreate, permission.NewAccountRef{Role: in.Role}); err != nil {
		return nil, err
	}
	if in.Role == "" || !in.Role.Valid() {
		return nil, domain.Invalid("role", "must be admin, manager or user")
	}

	acc, err := newAccount(in.Name, in.Email, in.Password, in.Role, s.now())
	if err != nil {
		return nil, err
	}
	acc.CreatedBy = actor.ID

	switch {
	case actor.Role == domain.RoleManager:
		acc.Manager = actor.ID
	case in.Role == domain.RoleUser && in.Manager != "":
		if err := s.requireActiveManager(ctx, in.Manager, "manager"); err != nil {
			return nil, err
		}
		acc.Manager = in.Manager
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor.ID, domain.ActionUserCreated, domain.TargetUser, acc.ID,
		fmt.Sprintf("Created %s account %s", acc.Role, acc.Email),
		map[string]any{"role": string(acc.Role)})
	return acc, nil
}

// List returns every account for an admin, the team for a manager, and
// only the caller for a user.
func (s *AccountService) List(ctx context.Context, actor *domain.Account) ([]*domain.Account, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return s.repo.List(ctx, ports.AccountFilter{})
	case domain.RoleManager:
		return s.repo.List(ctx, ports.AccountFilter{ManagedBy: actor.ID})
	default:
		self, err := s.repo.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return []*domain.Account{self}, nil
	}
}

func (s *AccountService) Get(ctx context.Context, actor *domain.Account, id string) (*domain.Account, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, permission.ActionRead, permission.AccountRefOf(acc)); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *AccountService) Update(ctx context.Context, actor *domain.Account, id string, in ports.UpdateAccountInput) (*domain.Account, error) {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, permission.ActionUpdate, permission.AccountRefOf(acc)); err != nil {
		return nil, err
	}

	allowed := permission.AccountUpdateFields(actor.Role, actor.ID == acc.ID)
	changed := make([]string, 0, 5)

	if in.Name != nil && allowed.Has(permission.FieldName) {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "is required")
		}
		acc.Name = name
		changed = append(changed, "name")
	}
	if in.Email != nil && allowed.Has(permission.FieldEmail) {
		email := normalizeEmail(*in.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, domain.Invalid("email", "must be a valid email")
		}
		acc.Email = email
		changed = append(changed, "email")
	}
	if in.Role != nil && allowed.Has(permission.FieldRole) {
		if !in.Role.Valid() {
			return nil, domain.Invalid("role", "must be admin, manager or user")
		}
		acc.Role = *in.Role
		changed = append(changed, "role")
	}
	if in.IsActive != nil && allowed.Has(permission.FieldIsActive) {
		acc.IsActive = *in.IsActive
		changed = append(changed, "is_active")
	}
	if in.Manager != nil && allowed.Has(permission.FieldManager) {
		if *in.Manager != "" {
			if err := s.requireActiveManager(ctx, *in.Manager, "manager"); err != nil {
				return nil, err
			}
		}
		acc.Manager = *in.Manager
		changed = append(changed, "manager")
	}

	acc.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor.ID, domain.ActionUserUpdated, domain.TargetUser, acc.ID,
		fmt.Sprintf("Updated account %s", acc.Email),
		map[string]any{"fields": changed})
	return acc, nil
}

// ChangePassword is only available to the account owner.
func (s *AccountService) ChangePassword(ctx context.Context, actor *domain.Account, id, current, next string) error {
	if actor.ID != id {
		return &permission.DeniedError{Reason: permission.ReasonNotSubject}
	}
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return domain.Invalid("new_password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc.PasswordHash = string(hash)
	acc.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, acc); err != nil {
		return err
	}
	s.activity.Record(ctx, actor.ID, domain.ActionUserUpdated, domain.TargetUser, acc.ID, "Changed password", nil)
	return nil
}

// Deactivate soft-deletes an account so existing references keep resolving.
func (s *AccountService) Deactivate(ctx context.Context, actor *domain.Account, id string) error {
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, permission.ActionDelete, permission.AccountRefOf(acc)); err != nil {
		return err
	}
	if acc.ID == actor.ID {
		return domain.Invalid("id", "cannot deactivate your own account")
	}

	acc.IsActive = false
	acc.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, acc); err != nil {
		return err
	}
	s.activity.Record(ctx, actor.ID, domain.ActionUserDeleted, domain.TargetUser, acc.ID,
		fmt.Sprintf("Deactivated account %s", acc.Email), nil)
	return nil
}

func (s *AccountService) requireActiveManager(ctx context.Context, id, field string) error {
	return requireActiveRole(ctx, s.repo, id, domain.RoleManager, field)
}

// requireActiveRole checks that id names an active account with role.
func requireActiveRole(ctx context.Context, repo ports.AccountRepository, id string, role domain.Role, field string) error {
	acc, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Invalid(field, "account not found")
		}
		return err
	}
	if acc.Role != role || !acc.IsActive {
		return domain.Invalid(field, fmt.Sprintf("must be an active %s", role))
	}
	return nil
}
