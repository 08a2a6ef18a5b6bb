package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/muralmap/internal/pkg/metrics"
)

// SetupRoutes registers the page, REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return errTooManyRequests(c, "too many requests, please try again later")
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Browser page and its assets
	SetupPage(app, deps)

	// The feature collection the page loads. A cold build scrapes the
	// wiki, so no request timeout here.
	app.Get("/get_mural_data", MuralDataHandler(deps))

	// Exported blobs (object URLs)
	app.Get("/blob/:id", BlobHandler(deps))

	// REST API v1, 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/murals", timeout.NewWithContext(ListMuralsHandler(deps), 15*time.Second))
	v1.Post("/murals/refresh", RefreshMuralsHandler(deps))

	// Viewer sessions
	v1.Post("/viewer/sessions", CreateSessionHandler(deps))
	v1.Get("/viewer/sessions/:id", GetSessionHandler(deps))
	v1.Post("/viewer/sessions/:id/load", LoadSessionHandler(deps))
	v1.Get("/viewer/sessions/:id/clusters", timeout.NewWithContext(SessionClustersHandler(deps), 15*time.Second))
	v1.Post("/viewer/sessions/:id/export", ExportSessionHandler(deps))
	v1.Delete("/viewer/sessions/:id", DeleteSessionHandler(deps))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/viewer/:id", ViewerSocketGuard(deps), websocket.New(ViewerSocketHandler(deps)))
}
