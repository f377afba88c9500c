package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// Context keys set by Auth.
const (
	AccountKey = "account"
	RoleKey    = "role"
)

// AccountResolver loads the active account behind a token subject.
type AccountResolver interface {
	Authenticate(ctx context.Context, accountID string) (*domain.Account, error)
}

// Auth validates the JWT, loads the account it names and injects it into
// the context. Deactivated accounts are rejected even with a valid token.
func Auth(jwtSecret string, accounts AccountResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
			}

			acc, err := accounts.Authenticate(c.Request().Context(), userID)
			switch {
			case errors.Is(err, domain.ErrAccountInactive):
				return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
			case errors.Is(err, domain.ErrInvalidCredentials):
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			case err != nil:
				return err
			}

			c.Set(AccountKey, acc)
			c.Set(RoleKey, string(acc.Role))

			return next(c)
		}
	}
}
