package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// Skipper reports whether a request should bypass authentication.
type Skipper func(c echo.Context) bool

// Authenticate verifies the bearer access token and binds the resulting
// identity to the request context. Public endpoints are exempted via the
// skipper.
func Authenticate(tokens *TokenService, skip Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperr.E(apperr.KindUnauthorized, "Authorization header missing or invalid")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.E(apperr.KindUnauthorized, "Authorization header missing or invalid")
			}

			claims, err := tokens.VerifyAccess(parts[1])
			if err != nil {
				return apperr.E(apperr.KindInvalidToken, "Invalid or expired token")
			}

			ctx := WithIdentity(c.Request().Context(), claims.Identity())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
