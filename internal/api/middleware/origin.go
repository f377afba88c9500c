package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/projecthub/pm-system/internal/core/domain"
)

// Origin stores the caller's IP and user agent on the request context so
// activity entries can record where an action came from.
func Origin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := domain.WithOrigin(req.Context(), domain.Origin{
				IP:        c.RealIP(),
				UserAgent: req.UserAgent(),
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
