package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/kontakty/contacts-api/internal/core/domain"
)

// RBAC lets the request through when the authenticated user holds at least
// one of allowedRoles. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(CtxRoles).([]domain.Role)
			for _, r := range roles {
				if _, ok := allowed[r]; ok {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}
