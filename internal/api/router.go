package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/handlers"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/logger"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/validator"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB     *gorm.DB
	Redis  *redis.Client // nil when locking is in process
	Logger *slog.Logger

	PhysicalRepo  repository.PhysicalNumberRepository
	Lifecycle     services.LifecycleService
	Provisioning  services.ProvisioningService
	Recovery      services.RecoveryService
	Cooldowns     services.CooldownService
	Messages      services.MessageRouter
	Notifications services.NotificationService

	// PhysicalNumberID is the seeded physical number the API acts for
	PhysicalNumberID uint

	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	AppEnv         string
	RateLimiter    *middleware.IPRateLimiter // nil disables rate limiting
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	var secLog *logger.SecurityLogger
	if cfg.Logger != nil {
		secLog = logger.FromLogger(cfg.Logger)
	}

	// Middleware order: outermost first
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}
	e.Use(middleware.Metrics())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv, secLog))
	if cfg.RateLimiter != nil {
		e.Use(middleware.RateLimiter(cfg.RateLimiter, secLog))
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	virtualNumberHandler := handlers.NewVirtualNumberHandler(cfg.Lifecycle, cfg.Provisioning, cfg.Recovery, cfg.PhysicalNumberID)
	physicalNumberHandler := handlers.NewPhysicalNumberHandler(cfg.PhysicalRepo, cfg.Lifecycle, cfg.PhysicalNumberID)
	cooldownHandler := handlers.NewCooldownHandler(cfg.Cooldowns)
	messageHandler := handlers.NewMessageHandler(cfg.Messages)
	notificationHandler := handlers.NewNotificationHandler(cfg.Notifications)

	// Health and metrics routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.APIKey, secLog))

	// Virtual number routes
	numbers := api.Group("/virtual-numbers")
	numbers.GET("", virtualNumberHandler.List)
	numbers.POST("", virtualNumberHandler.Create)
	numbers.POST("/recover", virtualNumberHandler.Recover)
	numbers.GET("/:id", virtualNumberHandler.Get)
	numbers.POST("/:id/deactivate", virtualNumberHandler.Deactivate)
	numbers.POST("/:id/toggle-messages", virtualNumberHandler.ToggleMessages)
	numbers.POST("/:id/toggle-calls", virtualNumberHandler.ToggleCalls)
	numbers.DELETE("/:id", virtualNumberHandler.Delete)

	// Physical number routes
	api.GET("/physical-number", physicalNumberHandler.Get)
	api.GET("/physical-numbers/:id/virtual-numbers", physicalNumberHandler.ListVirtualNumbers)
	api.GET("/lookup/:number", physicalNumberHandler.Lookup)

	api.GET("/cooldowns", cooldownHandler.Status)

	// Message routes
	messages := api.Group("/messages")
	messages.GET("", messageHandler.List)
	messages.PATCH("/:id/read", messageHandler.MarkAsRead)
	messages.DELETE("/:id", messageHandler.Delete)

	api.GET("/notifications", notificationHandler.Summary)
	api.GET("/notifications/count", notificationHandler.Count)

	// Carrier-facing ingest
	api.POST("/inbound", messageHandler.Inbound)

	return e
}
