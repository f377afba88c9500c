package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/domain"
)

type stubResolver struct {
	accounts map[string]*domain.Account
}

func (s *stubResolver) Authenticate(_ context.Context, id string) (*domain.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return acc, nil
}

func newResolver() *stubResolver {
	return &stubResolver{accounts: map[string]*domain.Account{
		"ada": {ID: "ada", Role: domain.RoleAdmin, IsActive: true},
		"old": {ID: "old", Role: domain.RoleUser, IsActive: false},
	}}
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", newResolver())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rec, c, called := runAuth(t, "Bearer "+signed(t, "secret", jwt.MapClaims{"user_id": "ada", "role": "admin"}))

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	acc, ok := c.Get(AccountKey).(*domain.Account)
	if !ok || acc.ID != "ada" {
		t.Fatalf("account not set: %+v", c.Get(AccountKey))
	}
	if c.Get(RoleKey) != "admin" {
		t.Fatalf("role not set")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Token abc",
		"garbage token":   "Bearer not-a-token",
		"wrong secret":    "Bearer " + signed(t, "other", jwt.MapClaims{"user_id": "ada"}),
		"no subject":      "Bearer " + signed(t, "secret", jwt.MapClaims{"role": "admin"}),
		"unknown account": "Bearer " + signed(t, "secret", jwt.MapClaims{"user_id": "ghost"}),
		"inactive":        "Bearer " + signed(t, "secret", jwt.MapClaims{"user_id": "old"}),
	}
	for name, header := range cases {
		rec, _, called := runAuth(t, header)
		if called {
			t.Fatalf("%s: should not reach next", name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestOrigin_StoresRequestOrigin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.1.2.3")
	req.Header.Set("User-Agent", "pm-cli/1.0")
	c := e.NewContext(req, httptest.NewRecorder())

	var got domain.Origin
	handler := Origin()(func(c echo.Context) error {
		got = domain.OriginFrom(c.Request().Context())
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.IP != "10.1.2.3" || got.UserAgent != "pm-cli/1.0" {
		t.Fatalf("unexpected origin %+v", got)
	}
}
