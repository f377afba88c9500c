package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/api/middleware"
	"github.com/projecthub/pm-system/internal/core/domain"
)

// currentAccount returns the account injected by the Auth middleware.
// Its absence means the route was mounted without auth, so fail closed.
func currentAccount(c echo.Context) (*domain.Account, error) {
	acc, ok := c.Get(middleware.AccountKey).(*domain.Account)
	if !ok || acc == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return acc, nil
}

// bindAndValidate decodes the body and runs struct validation. Both
// failures are client errors.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return nil
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}
