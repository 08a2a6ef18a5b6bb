package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/muralmap/internal/adapters/http"
	"github.com/samirrijal/muralmap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/muralmap/internal/adapters/nats"
	"github.com/samirrijal/muralmap/internal/app"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/core/usecases"
	"github.com/samirrijal/muralmap/internal/pkg/config"
	"github.com/samirrijal/muralmap/internal/pkg/logging"
	"github.com/samirrijal/muralmap/internal/pkg/telemetry"
	"github.com/samirrijal/muralmap/internal/viewer"
)

func main() {
	cfg, err := config.Load("muralmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("muralmap-api", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database (optional, holds the extra murals)
	db := app.Database(ctx, cfg.Database)
	if db != nil {
		defer db.Close()
	}

	// Cache
	cache, valkeyCache, closeCache := app.Cache(cfg.Valkey)
	defer closeCache()

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay. Without a publisher the
	// relay reads each session's bus directly.
	var natsConn *nats.Conn
	if pub != nil {
		natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	// Use cases
	murals := usecases.NewMuralService(
		app.Scraper(cfg.LocalWiki),
		app.Extras(cfg, db),
		cache,
		events,
		app.DatasetOptions(cfg),
	)

	// An in-memory cache does not see rebuilds made by the refresher,
	// so drop it whenever one is announced.
	if valkeyCache == nil && pub != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err = sub.SubscribeDataRefreshed(ctx, "", func(ctx context.Context, r domain.DataRefresh) error {
				slog.Info("mural data refreshed elsewhere, dropping cached copy", "features", r.Features)
				return murals.Invalidate(ctx)
			})
			if err != nil {
				slog.Warn("subscribe data refreshed", "error", err)
			}
		}
	}

	mapOpts := app.MapOptions(cfg.Map)
	blobs := memory.NewBlobStore()
	viewers := viewer.NewRegistry(murals, blobs, events, viewer.RegistryOptions{
		Map:         mapOpts,
		MaxSessions: cfg.Viewer.MaxSessions,
		IdleTTL:     time.Duration(cfg.Viewer.SessionIdleSecs) * time.Second,
	})
	go viewers.Run(ctx, time.Minute)

	// Warm the cache so the first page load does not wait for a scrape.
	go func() {
		if _, err := murals.Collection(ctx); err != nil {
			slog.Warn("warm mural collection", "error", err)
		}
	}()

	deps := &http.Dependencies{
		Murals:  murals,
		Viewers: viewers,
		Blobs:   blobs,
		Map:     mapOpts,
		NATS:    natsConn,
		DB:      db,
		Cache:   valkeyCache,
	}

	// Fiber
	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Mural Map API",
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, " + cfg.Server.PublicURL,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(fiberApp, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := fiberApp.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	cancel()

	slog.Info("server stopped")
}
