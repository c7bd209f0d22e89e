package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/pflag"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/auth"
	"github.com/taskboard/backend/internal/infrastructure/db"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/infrastructure/storage"
	transporthttp "github.com/taskboard/backend/internal/transport/http"
	"github.com/taskboard/backend/internal/transport/http/dto"
	httpmw "github.com/taskboard/backend/internal/transport/http/middleware"
	"github.com/taskboard/backend/pkg/utils/keygen"
	"gorm.io/gorm"
)

func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "../config/config.yaml"
	}
	return configPath
}

func main() {
	configFlag := pflag.StringP("config", "c", "", "path to config.yaml")
	pflag.Parse()

	cfg, err := config.Load(resolveConfigPath(*configFlag))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	database, err := db.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Infow("database connection established", "driver", cfg.Database.Driver)

	if err := db.RunMigrations(database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Info("database migrations completed")

	files, err := storage.New(cfg.Storage, log)
	if err != nil {
		log.Fatalf("failed to initialize attachment storage: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize token issuer: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          globalErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	allowedOrigins := "http://localhost:3000"
	if len(cfg.Auth.AllowedOrigins) > 0 {
		allowedOrigins = strings.Join(cfg.Auth.AllowedOrigins, ",")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + cfg.Features.RequestIDHeader,
		AllowMethods: "GET, POST, HEAD, PUT, DELETE, PATCH",
	}))

	app.Use(httpmw.RequestID(cfg.Features.RequestIDHeader))
	if cfg.Features.EnableRequestLogging {
		app.Use(httpmw.AccessLog(log))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup API routes
	users := transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		DB:     database,
		Logger: log,
		Config: cfg,
		Files:  files,
		Tokens: tokens,
	})

	bootstrapAdmin(users, cfg.Bootstrap, log)

	go func() {
		if err := app.Listen(cfg.Server.Address()); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	log.Infof("server started on %s", cfg.Server.Address())

	gracefulShutdown(app, database, files, log)
}

// bootstrapAdmin creates the configured admin account when no admin exists.
func bootstrapAdmin(users ports.UserService, cfg config.BootstrapConfig, log *logger.Logger) {
	if cfg.AdminEmail == "" {
		log.Warn("bootstrap admin not configured; skipping")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := cfg.AdminName
	if name == "" {
		name = "Administrator"
	}
	password, generated := cfg.AdminPassword, false
	if password == "" {
		password, generated = keygen.GenerateRandomPassword(20), true
	}
	admin, err := users.EnsureAdmin(ctx, ports.UserInput{
		Name:     name,
		Email:    cfg.AdminEmail,
		Password: password,
	})
	if err != nil {
		log.Fatalf("failed to bootstrap admin account: %v", err)
	}
	if admin == nil {
		return
	}
	log.Infow("bootstrap admin created", "email", admin.Email)
	if generated {
		log.Warnw("bootstrap admin password generated; change it after first login", "password", password)
	}
}

func globalErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code < fiber.StatusInternalServerError {
			log.Warnw("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", httpmw.RequestIDFrom(c),
			)
		} else {
			log.Errorw("request error",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", httpmw.RequestIDFrom(c),
			)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: err.Error(),
		})
	}
}

func gracefulShutdown(app *fiber.App, database *gorm.DB, files ports.FileStore, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	if closer, ok := files.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("failed to close attachment storage: %v", err)
		}
	}

	if err := db.Close(database); err != nil {
		log.Errorf("failed to close database connection: %v", err)
	}

	log.Info("server exited gracefully")
}
