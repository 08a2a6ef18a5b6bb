// Package app builds the services shared by the commands from configuration.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/samirrijal/muralmap/internal/adapters/extras"
	"github.com/samirrijal/muralmap/internal/adapters/memory"
	"github.com/samirrijal/muralmap/internal/adapters/postgres"
	"github.com/samirrijal/muralmap/internal/adapters/valkey"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/core/usecases"
	"github.com/samirrijal/muralmap/internal/localwiki"
	"github.com/samirrijal/muralmap/internal/pkg/config"
	"github.com/samirrijal/muralmap/internal/viewer"
)

// CachePrefix namespaces every key this service writes to Valkey.
const CachePrefix = "muralmap:"

// MapOptions returns the initial map view.
func MapOptions(c config.MapConfig) viewer.MapOptions {
	return viewer.MapOptions{
		Center: domain.GeoPoint{Lat: c.CenterLat, Lon: c.CenterLon},
		Zoom:   c.Zoom,
		BaseLayer: viewer.TileLayer{
			URLTemplate: c.TileURL,
			ID:          c.TileID,
			AccessToken: c.AccessToken,
			MaxZoom:     c.MaxZoom,
			Attribution: c.Attribution,
		},
		MaxClusterRadius: c.MaxClusterRadius,
	}
}

// Scraper returns a LocalWiki client.
func Scraper(c config.LocalWikiConfig) *localwiki.Client {
	return localwiki.NewClient(localwiki.Options{
		Site: localwiki.Site{
			IndexURL: c.IndexURL,
			BaseURL:  c.BaseURL,
			SiteURL:  c.SiteURL,
		},
		Throttle:      time.Duration(c.ThrottleMS) * time.Millisecond,
		Timeout:       time.Duration(c.TimeoutSecs) * time.Second,
		UserAgent:     c.UserAgent,
		MaxPages:      c.MaxPages,
		CreditHelpURL: c.CreditHelpURL,
	})
}

// DatasetOptions returns how the published collection is numbered and padded.
func DatasetOptions(cfg *config.Config) usecases.DatasetOptions {
	m := cfg.Murals
	return usecases.DatasetOptions{
		FirstID:        m.FirstID,
		ReserveUntilID: m.ReserveUntilID,
		Address:        m.Address,
		Zoom:           m.Zoom,
		Icon:           m.Icon,
		ReservedIcon:   m.ReservedIcon,
		VisibleMap:     m.VisibleMap,
		ReserveMap:     m.ReserveMap,
		IndexURL:       cfg.LocalWiki.IndexURL,
		CacheTTL:       time.Duration(m.CacheTTLSeconds) * time.Second,
	}
}

// ExtraDefaults fills the columns an extra murals row leaves empty.
func ExtraDefaults(m config.MuralsConfig) domain.Mural {
	return domain.Mural{
		Address: m.Address,
		Zoom:    m.Zoom,
		Icon:    m.Icon,
		Blank:   1,
		Maps:    m.VisibleMap,
	}
}

// ExtrasCSV returns the hand-maintained murals file.
func ExtrasCSV(m config.MuralsConfig) *extras.CSVSource {
	return extras.NewCSVSource(m.ExtrasCSV, ExtraDefaults(m))
}

// Extras returns every extra murals source: the database table when one
// is connected, then the CSV file.
func Extras(cfg *config.Config, db *postgres.DB) ports.ExtraMuralSource {
	chain := extras.Chain{}
	if db != nil {
		chain = append(chain, postgres.NewExtraMuralRepo(db))
	}
	return append(chain, ExtrasCSV(cfg.Murals))
}

// Cache connects to Valkey and falls back to process memory when the
// server is unreachable. The returned func releases the connection.
func Cache(c config.ValkeyConfig) (ports.CacheService, *valkey.Cache, func()) {
	vc, err := valkey.New(c.Addr, CachePrefix)
	if err != nil {
		slog.Warn("valkey unavailable, caching in memory", "error", err)
		return memory.NewCache(), nil, func() {}
	}
	return vc, vc, vc.Close
}

// Database connects to Postgres when enabled. A failed connection is
// logged and the service runs on the CSV extras alone.
func Database(ctx context.Context, c config.DatabaseConfig) *postgres.DB {
	if !c.Enabled {
		return nil
	}
	db, err := postgres.New(ctx, c.DSN(), c.MaxConns)
	if err != nil {
		slog.Warn("database unavailable", "error", err)
		return nil
	}
	return db
}
