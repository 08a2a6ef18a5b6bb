package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samirrijal/muralmap/internal/adapters/mapdata"
	"github.com/samirrijal/muralmap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/muralmap/internal/adapters/nats"
	"github.com/samirrijal/muralmap/internal/app"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/pkg/config"
	"github.com/samirrijal/muralmap/internal/pkg/logging"
	"github.com/samirrijal/muralmap/internal/viewer"
)

// muralview drives the viewer flow from a terminal: load the mural data
// from a running API, print the clusters, and save the export.
func main() {
	cfg, err := config.Load("muralmap-view")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseURL := flag.String("url", cfg.Server.PublicURL, "API base URL")
	zoom := flag.Float64("zoom", cfg.Map.Zoom, "zoom level to cluster at")
	out := flag.String("out", viewer.ExportFilename, "file to save the export to (empty to skip)")
	watch := flag.Bool("watch", false, "reload and re-export on every data refresh")
	flag.Parse()

	logging.Setup("muralmap-view", os.Getenv("LOG_LEVEL"), "text")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := mapdata.NewClient(*baseURL, cfg.Viewer.Endpoint, 30*time.Second)
	blobs := memory.NewBlobStore()
	bus := viewer.NewBus()
	bus.OnAny(func(e domain.ViewerEvent) {
		slog.Debug("viewer event", "type", e.Type, "markers", e.Markers, "href", e.Href, "error", e.Error)
	})
	ctrl := viewer.NewController("cli", viewer.NewMap(app.MapOptions(cfg.Map)), source, blobs, bus)
	defer ctrl.Close(context.Background())

	v := &view{ctrl: ctrl, blobs: blobs, zoom: *zoom, out: *out, w: os.Stdout}
	fmt.Fprintln(v.w, ctrl.Instructions())
	if err := v.run(ctx); err != nil {
		log.Fatalf("muralview: %v", err)
	}
	if !*watch {
		return
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeDataRefreshed(ctx, "", func(_ context.Context, r domain.DataRefresh) error {
		slog.Info("mural data refreshed, reloading", "features", r.Features)
		// A refresh that arrives mid-load supersedes it.
		go func() {
			if err := v.run(ctx); err != nil && !errors.Is(err, domain.ErrSuperseded) {
				slog.Error("reload", "error", err)
			}
		}()
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("watching for refreshes")
	<-ctx.Done()
}

// view is one terminal rendering of a controller.
type view struct {
	ctrl  *viewer.Controller
	blobs *memory.BlobStore
	zoom  float64
	out   string
	w     io.Writer
}

// run loads the data, prints the clusters, and saves the export.
func (v *view) run(ctx context.Context) error {
	res, err := v.ctrl.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(v.w, "%d features, %d markers\n", res.Features, res.Markers)
	fmt.Fprintln(v.w, res.Instructions)

	m := v.ctrl.Map()
	tile := m.BaseLayer().TileAt(m.Center(), v.zoom)
	fmt.Fprintf(v.w, "\ncentre tile %d/%d/%d\n", tile.Z, tile.X, tile.Y)

	clusters := v.ctrl.Clusters(v.zoom)
	fmt.Fprintf(v.w, "%d clusters at zoom %g\n", len(clusters), v.zoom)
	for _, c := range clusters {
		if c.Count == 1 {
			fmt.Fprintf(v.w, "  %9.5f %10.5f  %s\n", c.Center.Lat, c.Center.Lon, c.Markers[0].Label)
			continue
		}
		fmt.Fprintf(v.w, "  %9.5f %10.5f  (%d murals within %.0fm)\n", c.Center.Lat, c.Center.Lon, c.Count, c.Spread)
	}

	if v.out == "" {
		return nil
	}
	href, err := v.ctrl.Export(ctx)
	if err != nil {
		return err
	}
	blob, err := v.blobs.Get(ctx, strings.TrimPrefix(href, memory.BlobPrefix))
	if err != nil {
		return err
	}
	if err := os.WriteFile(v.out, blob.Data, 0o644); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	fmt.Fprintf(v.w, "\nsaved %s (%d bytes)\n", v.out, len(blob.Data))
	return nil
}
