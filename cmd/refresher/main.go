package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/muralmap/internal/adapters/nats"
	"github.com/samirrijal/muralmap/internal/adapters/postgres"
	"github.com/samirrijal/muralmap/internal/app"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/core/usecases"
	"github.com/samirrijal/muralmap/internal/pkg/config"
	"github.com/samirrijal/muralmap/internal/pkg/logging"
	"github.com/samirrijal/muralmap/internal/pkg/telemetry"
	"github.com/samirrijal/muralmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("muralmap-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("muralmap-refresher", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db := app.Database(ctx, cfg.Database)
	if db != nil {
		defer db.Close()
	}

	// The refresher writes the shared cache the API reads from.
	cache, _, closeCache := app.Cache(cfg.Valkey)
	defer closeCache()

	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, refreshes will not be announced", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	murals := usecases.NewMuralService(app.Scraper(cfg.LocalWiki), app.Extras(cfg, db), cache, events, app.DatasetOptions(cfg))

	activities := &workflows.RefreshActivities{Murals: murals}
	if db != nil {
		activities.ExtrasFile = app.ExtrasCSV(cfg.Murals)
		activities.ExtrasRepo = postgres.NewExtraMuralRepo(db)
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// Schedule the periodic refresh. If it is already running the existing
	// run is returned and keeps its schedule.
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           workflows.RefreshWorkflowID,
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cfg.Temporal.CronSchedule,
	}, workflows.RefreshWorkflow, workflows.RefreshInput{Reason: "cron"})
	if err != nil {
		log.Fatalf("start refresh workflow: %v", err)
	}
	slog.Info("refresh scheduled", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cfg.Temporal.CronSchedule)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.RefreshWorkflow)
	w.RegisterActivity(activities)

	slog.Info("refresher worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
