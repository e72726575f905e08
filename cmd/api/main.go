package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/agrimarket/api/internal/auth"
	"github.com/octobees/agrimarket/api/internal/config"
	"github.com/octobees/agrimarket/api/internal/database"
	"github.com/octobees/agrimarket/api/internal/handler"
	"github.com/octobees/agrimarket/api/internal/logging"
	middlewarepkg "github.com/octobees/agrimarket/api/internal/middleware"
	"github.com/octobees/agrimarket/api/internal/registration"
	"github.com/octobees/agrimarket/api/internal/repository"
	"github.com/octobees/agrimarket/api/internal/router"
	"github.com/octobees/agrimarket/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns:        cfg.DBPool.MaxConns,
		MinConns:        cfg.DBPool.MinConns,
		MaxConnLifetime: cfg.DBPool.MaxConnLifetime,
		MaxConnIdleTime: cfg.DBPool.MaxConnIdleTime,
	})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		logger.Info("database migrations applied")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	validator := registration.NewValidator(cfg.DefaultPhoneRegion)

	usersRepo := repository.NewPGXUsersRepository(pool)

	registrationService := service.NewRegistrationService(validator, usersRepo, jwtManager, cfg.BcryptCost, logger.Named("registration"))
	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Health:       handler.NewHealthHandler(pool),
		Registration: handler.NewRegistrationHandler(registrationService),
		Auth:         handler.NewAuthHandler(authService),
		Profiles:     handler.NewProfileHandler(userService),
		Users:        handler.NewUserAdminHandler(userService),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Port), zap.String("phone_region", validator.Region()))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
