package routes

import (
	"time"

	"github.com/craftbazaar/moderation-engine/internal/config"
	"github.com/craftbazaar/moderation-engine/internal/handlers"
	"github.com/craftbazaar/moderation-engine/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	moderationHandler *handlers.ModerationHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Intake — public so anonymous visitors can report, with a stricter
	// rate limit: 10 req/min per IP
	intake := api.Group("/reports")
	intake.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	intake.Post("/", moderationHandler.CreateReport)

	// Appeals — public because banned account owners cannot authenticate
	api.Post("/appeals", moderationHandler.Appeal)

	// Reviewer tools (JWT + reviewer role required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.ReviewerRequired(db, cfg))
	admin.Post("/moderation/decisions", moderationHandler.RecordDecision)
	admin.Post("/moderation/decisions/:id/release", moderationHandler.ReleaseHold)
	admin.Get("/moderation/held", moderationHandler.ListHeld)
	admin.Get("/moderation/cases/:id", moderationHandler.GetCase)

	// Webhooks — shared bearer token auth (no JWT)
	api.Post("/webhooks/cinder", webhookHandler.HandleCinder)
}
