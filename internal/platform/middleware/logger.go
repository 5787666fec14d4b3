package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
)

// Logger emits one line per request. Authenticated requests carry the
// tenant and user so per-hospital traffic can be filtered out of the
// shared stream.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			// Identity is bound by Authenticate further down the chain,
			// so it must be read after next(c) and from the request.
			if identity := auth.IdentityFromContext(c.Request().Context()); identity != nil {
				evt = evt.
					Str("tenant_id", identity.TenantID).
					Str("user_id", identity.UserID)
			}

			evt.Msg("request")
			return err
		}
	}
}
