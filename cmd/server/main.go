package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanpulse/internal/cache"
	"fanpulse/internal/config"
	"fanpulse/internal/database"
	"fanpulse/internal/events"
	"fanpulse/internal/middleware"
	"fanpulse/internal/realtime"
	"fanpulse/internal/response"
	"fanpulse/internal/router"
	"fanpulse/internal/services"
	"fanpulse/internal/utils"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(&cfg.Logging, cfg.Server.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("starting fanpulse",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===============================
	// INFRASTRUCTURE
	// ===============================

	db, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var c cache.Cache
	if cfg.Cache.RedisURL != "" {
		c, err = cache.NewRedisCache(cfg.Cache.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		logger.Info("using redis cache")
	} else {
		c = cache.NewMemoryCache(logger)
		logger.Info("using in-memory cache")
	}
	defer c.Close()

	bus := events.NewInMemoryEventBus(logger)

	var uploader *utils.CloudinaryService
	if cfg.Cloudinary.UploadsEnabled() {
		uploader, err = utils.NewCloudinaryService(&cfg.Cloudinary, logger)
		if err != nil {
			return fmt.Errorf("cloudinary: %w", err)
		}
		logger.Info("image uploads enabled")
	} else {
		logger.Warn("cloudinary not configured, image uploads disabled")
	}

	// ===============================
	// SERVICES
	// ===============================

	serviceCollection, err := services.NewServiceCollection(db, c, bus, cfg, uploader, logger)
	if err != nil {
		return fmt.Errorf("services: %w", err)
	}

	hub := realtime.NewHub(bus, logger)
	go hub.Run(ctx)

	if cfg.Archiver.Enabled {
		go services.StartArchiver(ctx, serviceCollection.GetArticleService(), cfg.Archiver.Retention, cfg.Archiver.Interval, logger)
	}

	// ===============================
	// HTTP
	// ===============================

	builder := response.NewBuilder(response.DefaultConfig(), logger)
	authMW := middleware.NewAuthMiddleware(serviceCollection.GetAuthService(), builder, logger)
	rateLimiter := middleware.NewRateLimiter(300, time.Minute, builder, logger)
	defer rateLimiter.Stop()

	handler := router.SetupRouter(&router.Dependencies{
		Services:    serviceCollection,
		Config:      cfg,
		DB:          db,
		Cache:       c,
		Hub:         hub,
		Auth:        authMW,
		RateLimiter: rateLimiter,
		Builder:     builder,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ===============================
	// SHUTDOWN
	// ===============================

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped cleanly")
	return nil
}

func initLogger(cfg *config.LoggingConfig, environment string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if environment == "production" || cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}
