package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/database"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/handlers"
	"github.com/okaz-app/okaz-backend/internal/logging"
	"github.com/okaz-app/okaz-backend/internal/mail"
	"github.com/okaz-app/okaz-backend/internal/middleware"
	"github.com/okaz-app/okaz-backend/internal/push"
	"github.com/okaz-app/okaz-backend/internal/routes"
	"github.com/okaz-app/okaz-backend/internal/services"
	"github.com/okaz-app/okaz-backend/internal/ws"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	cfg := config.Load()

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		slog.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET environment variables are required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Outbound channels
	var mailer mail.Mailer = mail.Noop{}
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.AppBaseURL)
	} else {
		slog.Warn("RESEND_API_KEY not set, emails disabled")
	}

	var notifier push.Notifier = push.Noop{}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := push.NewFCMNotifier(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			slog.Error("fcm init failed", "error", err)
		} else {
			notifier = fcm
		}
	} else {
		slog.Warn("FIREBASE_CREDENTIALS not set, push disabled")
	}

	hub := ws.NewHub()

	// Services
	userService := services.NewUserService(database.DB, cfg, mailer)
	authService := services.NewAuthService(database.DB, cfg, userService)
	roleService := services.NewRoleService(database.DB)
	communityService := services.NewCommunityService(database.DB, cfg, mailer)
	announcementService := services.NewAnnouncementService(database.DB)
	categoryService := services.NewCategoryService(database.DB)
	ratingService := services.NewRatingService(database.DB)
	reportService := services.NewReportService(database.DB)
	geographyService := services.NewGeographyService(database.DB)
	chatService := services.NewChatService(database.DB, notifier, hub)

	// Handlers
	h := &routes.Handlers{
		Auth:         handlers.NewAuthHandler(cfg, authService, userService),
		Health:       handlers.NewHealthHandler(),
		User:         handlers.NewUserHandler(userService),
		Role:         handlers.NewRoleHandler(roleService),
		Community:    handlers.NewCommunityHandler(communityService),
		Announcement: handlers.NewAnnouncementHandler(announcementService),
		Category:     handlers.NewCategoryHandler(categoryService),
		Rating:       handlers.NewRatingHandler(ratingService),
		Report:       handlers.NewReportHandler(reportService),
		Geography:    handlers.NewGeographyHandler(geographyService),
		Chat:         handlers.NewChatHandler(chatService),
		Socket:       ws.NewHandler(hub, chatService, userService),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// errorHandler renders every error, handler-returned or panic-recovered, as
// the shared envelope. Server errors are logged and their details withheld.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		StatusCode: code,
		Message:    message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Path(),
	})
}
