package db

import (
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

// TenantMiddleware resolves the authenticated identity's tenant store and
// binds it to the request context. Must run after auth.Authenticate, with
// the same skipper so public endpoints stay exempt.
func TenantMiddleware(router *Router, skip auth.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			identity := auth.IdentityFromContext(c.Request().Context())
			if identity == nil {
				return apperr.E(apperr.KindUnauthorized, "Unauthorized: user not found in request")
			}

			pool, err := router.Resolve(c.Request().Context(), identity.TenantID)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(WithPool(c.Request().Context(), pool)))
			return next(c)
		}
	}
}
