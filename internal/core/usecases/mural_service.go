package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/pkg/metrics"
	"github.com/samirrijal/muralmap/internal/pkg/telemetry"
)

const collectionCacheKey = "murals:geojson"

// Reserved placeholders sit out in the bay so nobody sees them by accident.
var reservedLocation = domain.GeoPoint{Lat: 37.8, Lon: -122.4}

// DatasetOptions controls how the published dataset is assembled.
type DatasetOptions struct {
	FirstID        int
	ReserveUntilID int
	Address        string
	Zoom           int
	Icon           string
	ReservedIcon   string
	VisibleMap     int
	ReserveMap     int
	IndexURL       string // link for reserved placeholders
	CacheTTL       time.Duration
}

// MuralService builds and serves the mural feature collection.
type MuralService struct {
	scraper ports.MuralScraper
	extras  ports.ExtraMuralSource
	cache   ports.CacheService
	events  ports.EventPublisher
	opts    DatasetOptions

	// builds collapses concurrent rebuilds into one scrape.
	builds singleflight.Group
}

// NewMuralService creates a new MuralService. extras, cache and events may be nil.
func NewMuralService(scraper ports.MuralScraper, extras ports.ExtraMuralSource, cache ports.CacheService, events ports.EventPublisher, opts DatasetOptions) *MuralService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 6 * time.Hour
	}
	return &MuralService{scraper: scraper, extras: extras, cache: cache, events: events, opts: opts}
}

// Collection returns the GeoJSON document, from cache when possible.
func (s *MuralService) Collection(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, collectionCacheKey); err == nil && len(data) > 0 {
			metrics.CacheHits.WithLabelValues("collection").Inc()
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues("collection").Inc()
	}

	// The shared build outlives any single caller giving up on it.
	buildCtx := context.WithoutCancel(ctx)
	ch := s.builds.DoChan(collectionCacheKey, func() (any, error) {
		data, _, err := s.build(buildCtx)
		if err != nil {
			return nil, err
		}
		s.store(buildCtx, data)
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// FetchFeatures implements ports.FeatureSource for in-process viewers.
func (s *MuralService) FetchFeatures(ctx context.Context) ([]byte, error) {
	data, err := s.Collection(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrFetchFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	return data, nil
}

// Refresh rebuilds the dataset, replaces the cached copy, and announces it.
func (s *MuralService) Refresh(ctx context.Context) (*domain.DataRefresh, error) {
	data, refresh, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, data)

	if s.events != nil {
		if err := s.events.PublishDataRefreshed(ctx, *refresh); err != nil {
			slog.Warn("publish data refreshed", "error", err)
		}
	}
	return refresh, nil
}

// Invalidate drops the cached collection so the next request rebuilds it.
func (s *MuralService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, collectionCacheKey)
}

// List returns the published murals, paged. total counts every feature.
func (s *MuralService) List(ctx context.Context, offset, limit int) ([]domain.Mural, int, error) {
	data, err := s.Collection(ctx)
	if err != nil {
		return nil, 0, err
	}
	fc, err := domain.DecodeFeatureCollection(data)
	if err != nil {
		return nil, 0, err
	}

	total := len(fc.Features)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	murals := make([]domain.Mural, 0, end-offset)
	for _, f := range fc.Features[offset:end] {
		murals = append(murals, muralFromFeature(f))
	}
	return murals, total, nil
}

// Assemble numbers the scraped murals, appends extras, and pads the id
// range with reserved placeholders.
func (s *MuralService) Assemble(wiki []domain.WikiMural, extras []domain.Mural) []domain.Mural {
	murals := make([]domain.Mural, 0, len(wiki)+len(extras))
	for i, w := range wiki {
		maps := s.opts.VisibleMap
		if w.Reserved {
			maps = s.opts.ReserveMap
		}
		murals = append(murals, domain.Mural{
			ID:       s.opts.FirstID + i,
			Name:     w.Name,
			Location: w.Location,
			Address:  s.opts.Address,
			Zoom:     s.opts.Zoom,
			Icon:     s.opts.Icon,
			Popup:    w.Popup,
			Link:     "",
			Blank:    1,
			Maps:     maps,
		})
	}
	murals = append(murals, extras...)

	for id := s.opts.FirstID + len(murals); id <= s.opts.ReserveUntilID; id++ {
		murals = append(murals, domain.Mural{
			ID:       id,
			Name:     "reserved",
			Location: reservedLocation,
			Address:  s.opts.Address,
			Zoom:     s.opts.Zoom,
			Icon:     s.opts.ReservedIcon,
			Popup:    "reserved",
			Link:     s.opts.IndexURL,
			Blank:    1,
			Maps:     s.opts.ReserveMap,
		})
	}
	return murals
}

// Encode renders murals as a GeoJSON feature collection.
func Encode(murals []domain.Mural) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, m := range murals {
		f := geojson.NewFeature(orb.Point{m.Location.Lon, m.Location.Lat})
		f.Properties = m.Properties()
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

func (s *MuralService) build(ctx context.Context) ([]byte, *domain.DataRefresh, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanBuildCollection)
	defer span.End()
	start := time.Now()

	wiki, err := s.scraper.Scrape(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: scrape murals: %w", domain.ErrFetchFailed, err)
	}

	var extras []domain.Mural
	if s.extras != nil {
		extras, err = s.extras.ExtraMurals(ctx)
		if err != nil {
			// Extras are optional; the wiki data still publishes.
			slog.Warn("extra murals unavailable", "error", err)
			extras = nil
		}
	}

	murals := s.Assemble(wiki, extras)
	data, err := Encode(murals)
	if err != nil {
		return nil, nil, fmt.Errorf("encode collection: %w", err)
	}

	metrics.CollectionBuildDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("murals.scraped", len(wiki)),
		attribute.Int("murals.extras", len(extras)),
		attribute.Int("murals.features", len(murals)),
	)
	slog.Info("mural collection built",
		"scraped", len(wiki), "extras", len(extras), "features", len(murals),
		"duration", time.Since(start).String())

	return data, &domain.DataRefresh{
		Time:     time.Now().UTC(),
		Features: len(murals),
		Scraped:  len(wiki),
		Extras:   len(extras),
	}, nil
}

func (s *MuralService) store(ctx context.Context, data []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, collectionCacheKey, data, int(s.opts.CacheTTL.Seconds())); err != nil {
		slog.Warn("cache collection", "error", err)
	}
}

func muralFromFeature(f domain.Feature) domain.Mural {
	m := domain.Mural{
		Name:    f.Properties.Name(),
		Address: stringProp(f.Properties, "address"),
		Icon:    stringProp(f.Properties, "icon"),
		Popup:   stringProp(f.Properties, "popup"),
		Link:    stringProp(f.Properties, "link"),
		ID:      intProp(f.Properties, "id"),
		Zoom:    intProp(f.Properties, "zoom"),
		Blank:   intProp(f.Properties, "blank"),
		Maps:    intProp(f.Properties, "maps"),
	}
	if f.Geometry != nil {
		m.Location = f.Geometry.Location()
	}
	return m
}

func stringProp(p domain.Properties, key string) string {
	v, _ := p[key].(string)
	return v
}

func intProp(p domain.Properties, key string) int {
	// encoding/json decodes numbers into float64.
	v, _ := p[key].(float64)
	return int(v)
}
