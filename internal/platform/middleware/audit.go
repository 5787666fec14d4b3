package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// Audit logs who accessed which clinical resource. Emission is best-effort:
// it never blocks or fails the request it describes.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.URL.Path, "/api/v1/") {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			identity := auth.IdentityFromContext(req.Context())
			if identity == nil {
				return err
			}

			rid, _ := c.Get("request_id").(string)
			logger.Info().
				Str("request_id", rid).
				Str("user_id", identity.UserID).
				Str("tenant_id", identity.TenantID).
				Strs("roles", identity.Roles).
				Str("action", actionFor(req.Method)).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("audit")

			return err
		}
	}
}

func actionFor(method string) string {
	switch method {
	case http.MethodGet:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}
