package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securedocs/fileshare/internal/core/domain"
)

// RequireOperation enforces role-based access control for a single
// operation. The allowed role set comes from the domain policy, so routes
// and policy cannot drift apart. Deny is always an explicit 403.
func RequireOperation(op domain.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !domain.RoleCan(role, op) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
