// Package middleware provides HTTP middleware for the proxynum API.
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/logger"
)

// publicPrefixes are reachable without an API key
var publicPrefixes = []string{"/health", "/ready", "/metrics"}

// APIKeyAuth validates the bearer token in the Authorization header.
// An empty apiKey disables the check (development mode).
func APIKeyAuth(apiKey string, secLog *logger.SecurityLogger) echo.MiddlewareFunc {
	if apiKey == "" && secLog != nil {
		secLog.Warn("API_KEY not set - API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			for _, prefix := range publicPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			if apiKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if secLog != nil {
					secLog.AuthFailure(c.RealIP(), path, "missing authorization header")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				if secLog != nil {
					secLog.AuthFailure(c.RealIP(), path, "invalid API key")
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid API key",
					"code":  "UNAUTHORIZED",
				})
			}

			return next(c)
		}
	}
}
