package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/logger"
)

const defaultOrigin = "http://localhost:3000"

// SecureCORS returns CORS middleware limited to origins.
// Wildcard origins are dropped when appEnv is production. Requests from
// origins outside the list are recorded on secLog and left to the CORS
// middleware to reject.
func SecureCORS(origins []string, appEnv string, secLog *logger.SecurityLogger) echo.MiddlewareFunc {
	allowed := allowedOrigins(origins, appEnv)

	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = true
	}

	cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowed,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		ExposeHeaders:    []string{echo.HeaderRetryAfter, echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		handler := cors(next)
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin != "" && !allowedSet["*"] && !allowedSet[origin] && secLog != nil {
				secLog.InvalidOrigin(c.RealIP(), origin)
			}
			return handler(c)
		}
	}
}

func allowedOrigins(origins []string, appEnv string) []string {
	if len(origins) == 0 {
		return []string{defaultOrigin}
	}
	if appEnv != "production" {
		return origins
	}

	filtered := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin != "*" {
			filtered = append(filtered, origin)
		}
	}
	if len(filtered) == 0 {
		return []string{defaultOrigin}
	}
	return filtered
}
