package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/redis/go-redis/v9"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/config"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/database"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/lock"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/logger"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/services"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/smtp"
	"github.com/welldanyogia/webrana-proxynum-backend/internal/telecom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout     = 10 * time.Second
	rateLimitCleanupInt = time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting proxynum backend")
	cfg.LogConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	physical, err := database.SeedPhysicalNumber(ctx, db, cfg.PhysicalNumber, cfg.OwnerName)
	if err != nil {
		return fmt.Errorf("seed physical number: %w", err)
	}
	log.Info("physical number ready", slog.Uint64("id", uint64(physical.ID)))

	var (
		locker      lock.Locker
		redisClient *redis.Client
	)
	if cfg.RedisURL != "" {
		redisClient, err = lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, cfg.LockTTL, log)
		log.Info("using redis locks")
	} else {
		locker = lock.NewKeyedMutex()
	}

	gateway := telecom.NewSimulator(log, telecom.SimulatorConfig{
		FailureRate: cfg.GatewayFailureRate,
		MinLatency:  cfg.GatewayMinLatency,
		MaxLatency:  cfg.GatewayMaxLatency,
	})

	physicalRepo := repository.NewPhysicalNumberRepository(db)
	numberRepo := repository.NewVirtualNumberRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	cooldowns := services.NewCooldownService(repository.NewCooldownRepository(db), services.CooldownConfig{
		CreateCooldown:  cfg.CreateCooldown,
		RecoverCooldown: cfg.RecoverCooldown,
	}, nil)
	provisioningConfig := services.ProvisioningConfig{Timeout: cfg.ProvisionTimeout}
	messages := services.NewMessageRouter(numberRepo, messageRepo, locker, services.RouterConfig{
		SenderCategoryFilter: cfg.SenderCategoryFilter,
	}, log, nil)

	purger := services.NewPurger(numberRepo, services.PurgerConfig{
		Interval: cfg.PurgeInterval,
		After:    cfg.PurgeAfter,
	}, log, nil)
	purger.Start()
	defer purger.Stop()

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst)

	e := api.NewRouter(&api.RouterConfig{
		DB:               db,
		Redis:            redisClient,
		Logger:           log,
		PhysicalRepo:     physicalRepo,
		Lifecycle:        services.NewLifecycleService(numberRepo, locker, log, nil),
		Provisioning:     services.NewProvisioningService(physicalRepo, numberRepo, cooldowns, gateway, locker, provisioningConfig, log, nil),
		Recovery:         services.NewRecoveryService(physicalRepo, numberRepo, cooldowns, gateway, locker, provisioningConfig, log, nil),
		Cooldowns:        cooldowns,
		Messages:         messages,
		Notifications:    services.NewNotificationService(messageRepo),
		PhysicalNumberID: physical.ID,
		APIKey:           cfg.APIKey,
		AllowedOrigins:   cfg.Origins(),
		AppEnv:           cfg.AppEnv,
		RateLimiter:      limiter,
	})

	var smtpServer *gosmtp.Server
	if cfg.SMTPBridgeEnabled {
		backend := smtp.NewBackend(&smtp.BackendConfig{
			Router: messages,
			Domain: cfg.SMTPDomain,
			Logger: log.With(slog.String("component", "smtp")),
		})
		smtpServer = smtp.NewSecureServer(backend, &smtp.ServerConfig{
			Addr:   cfg.SMTPAddr,
			Domain: cfg.SMTPDomain,
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		log.Info("HTTP server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if smtpServer != nil {
		g.Go(func() error {
			log.Info("SMTP bridge listening", slog.String("addr", smtpServer.Addr), slog.String("domain", cfg.SMTPDomain))
			if err := smtpServer.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
				return fmt.Errorf("smtp server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		limiter.RunCleanup(gctx, rateLimitCleanupInt)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := e.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if smtpServer != nil {
			if err := smtpServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("smtp shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
