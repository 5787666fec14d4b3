package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// endpoints and the auth/onboarding flows that run before any token exists.
var publicPaths = map[string]bool{
	"/health":                          true,
	"/health/db":                       true,
	"/api/v1/auth/login":               true,
	"/api/v1/auth/refresh":             true,
	"/api/v1/auth/logout":              true,
	"/api/v1/tenants/register":         true,
	"/api/v1/tenants/verify":           true,
	"/api/v1/security/forgot-password": true,
	"/api/v1/security/reset-password":  true,
}

// PublicPathSkipper returns true for requests whose path should skip
// authentication and tenant resolution.
func PublicPathSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}
