package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kontakty/contacts-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	CtxUsername = "username"
	CtxEmail    = "email"
	CtxRoles    = "roles"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	ParseToken(token string) (*ports.TokenClaims, error)
}

// Auth validates the bearer token and injects its claims into the context.
func Auth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(CtxUsername, claims.Username)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRoles, claims.Roles)

			return next(c)
		}
	}
}
