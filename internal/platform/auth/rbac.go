package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// RequireRole returns middleware that passes when the identity holds at
// least one of the allowed roles.
func RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFromContext(c.Request().Context())
			if identity == nil {
				return apperr.E(apperr.KindUnauthorized, "Unauthorized: user not found in request")
			}
			for _, role := range allowed {
				if identity.HasRole(role) {
					return next(c)
				}
			}
			return apperr.E(apperr.KindForbidden, "Forbidden: insufficient role")
		}
	}
}

// RequirePermission returns middleware that passes when the identity's
// permission set contains the wildcard or intersects the required set.
// Role and permission checks are necessary but not sufficient: handlers
// must still apply the identity's attribute scope to their queries.
func RequirePermission(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFromContext(c.Request().Context())
			if identity == nil {
				return apperr.E(apperr.KindUnauthorized, "Unauthorized: user not found in request")
			}
			for _, perm := range required {
				if identity.HasPermission(perm) {
					return next(c)
				}
			}
			return apperr.E(apperr.KindForbidden, "Forbidden: insufficient permissions")
		}
	}
}
