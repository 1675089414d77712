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

	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/cinder"
	"github.com/craftbazaar/moderation-engine/internal/config"
	"github.com/craftbazaar/moderation-engine/internal/database"
	"github.com/craftbazaar/moderation-engine/internal/handlers"
	"github.com/craftbazaar/moderation-engine/internal/logging"
	"github.com/craftbazaar/moderation-engine/internal/middleware"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/craftbazaar/moderation-engine/internal/routes"
	"github.com/craftbazaar/moderation-engine/internal/services"
	"github.com/craftbazaar/moderation-engine/internal/tasks"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
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

	// Task queue
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	dispatcher := tasks.NewRedisDispatcher(rdb, cfg.TaskQueueName)

	// External case service
	cinderClient := cinder.NewClient(cfg.CinderBaseURL, cfg.CinderAPIToken)

	// Services
	registry := actions.NewRegistry(dispatcher)
	caseService := services.NewCaseService(database.DB)
	queueService := services.NewQueueService(database.DB, caseService, cfg.LocallyResolvableQueues)
	notifyService := services.NewNotifyService(database.DB, caseService, registry,
		&notify.LogSender{}, cfg.AppealWindowDays, cfg.AppealURL, cfg.OperatorEmails)
	decisionService := services.NewDecisionService(database.DB, caseService, queueService,
		registry, notifyService, dispatcher)
	syncService := services.NewSyncService(database.DB, caseService, cinderClient, cfg.CinderQueueSlug)
	reportService := services.NewReportService(database.DB, caseService, decisionService,
		notifyService, dispatcher)
	appealService := services.NewAppealService(database.DB, caseService, notifyService,
		cinderClient, cfg.CinderAppealQueueSlug)
	eventService := services.NewCinderEventService(database.DB, caseService, queueService, decisionService)

	// Task worker
	worker := tasks.NewWorker(rdb, cfg.TaskQueueName, cfg.TaskMaxAttempts)
	worker.Fatal = services.Fatal
	worker.Handle(tasks.TaskExecuteDecision, func(ctx context.Context, t tasks.Task) error {
		return decisionService.ExecuteAndNotify(ctx, t.DecisionID)
	})
	worker.Handle(tasks.TaskSyncDecision, func(ctx context.Context, t tasks.Task) error {
		return syncService.ReportToCinder(ctx, t.DecisionID)
	})
	worker.Handle(tasks.TaskSyncReport, func(ctx context.Context, t tasks.Task) error {
		return syncService.ReportCase(ctx, t.CaseID)
	})
	worker.Handle(tasks.TaskForwardLegal, func(ctx context.Context, t tasks.Task) error {
		return syncService.EscalateDecisionCase(ctx, t.DecisionID, cfg.CinderLegalQueueSlug)
	})
	worker.Handle(tasks.TaskEscalateReviewers, func(ctx context.Context, t tasks.Task) error {
		return syncService.EscalateDecisionCase(ctx, t.DecisionID, cfg.CinderQueueSlug)
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	webhookHandler := handlers.NewWebhookHandler(eventService, cfg.CinderWebhookToken)
	moderationHandler := handlers.NewModerationHandler(reportService, decisionService,
		appealService, caseService)

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
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
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
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, healthHandler, webhookHandler, moderationHandler)

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

	stopWorker()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := rdb.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
