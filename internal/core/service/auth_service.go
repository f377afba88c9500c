package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub/pm-system/internal/core/domain"
	"github.com/projecthub/pm-system/internal/core/permission"
	"github.com/projecthub/pm-system/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements registration, login and token subject resolution.
type AuthService struct {
	repo      ports.AccountRepository
	settings  ports.SettingsProvider
	activity  ports.ActivityRecorder
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	repo ports.AccountRepository,
	settings ports.SettingsProvider,
	activity ports.ActivityRecorder,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		settings:  settings,
		activity:  activity,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
	}
}

// Register creates a plain user account when self-registration is enabled.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.Account, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.System.AllowSelfRegistration {
		return nil, &permission.DeniedError{Reason: permission.ReasonRoleNotAllowed}
	}

	acc, err := newAccount(name, email, password, domain.RoleUser, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, acc.ID, domain.ActionUserCreated, domain.TargetUser, acc.ID,
		fmt.Sprintf("Self-registered account %s", acc.Email), nil)
	return acc, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	acc, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !acc.IsActive {
		return "", nil, domain.ErrAccountInactive
	}

	now := s.now().UTC()
	acc.LastLogin = &now
	if err := s.repo.Update(ctx, acc); err != nil {
		s.log.Warn().Err(err).Str("account", acc.ID).Msg("failed to store last login")
	}

	token, err := s.generateToken(acc)
	if err != nil {
		return "", nil, err
	}
	s.activity.Record(ctx, acc.ID, domain.ActionLogin, domain.TargetSystem, "", acc.Name+" logged in", nil)
	return token, acc, nil
}

// Logout only records the event; tokens are stateless and expire on their own.
func (s *AuthService) Logout(ctx context.Context, actor *domain.Account) {
	s.activity.Record(ctx, actor.ID, domain.ActionLogout, domain.TargetSystem, "", actor.Name+" logged out", nil)
}

func (s *AuthService) Authenticate(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !acc.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return acc, nil
}

// EnsureAdmin creates the bootstrap admin unless an account with that email
// already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.Account, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, false, err
	}

	acc, err := newAccount(name, email, password, domain.RoleAdmin, s.now())
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, false, err
	}
	return acc, true, nil
}

func (s *AuthService) generateToken(acc *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"user_id": acc.ID,
		"role":    string(acc.Role),
		"exp":     s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func newAccount(name, email, password string, role domain.Role, now time.Time) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalid("email", "must be a valid email")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		return nil, domain.Invalid("role", "must be admin, manager or user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &domain.Account{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
