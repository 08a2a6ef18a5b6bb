// Package viewer is a headless mural map: a map with a base tile layer, a
// clustered marker layer built from a fetched feature collection, and an
// export of that collection as a downloadable JSON blob.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/pkg/metrics"
	"github.com/samirrijal/muralmap/internal/pkg/telemetry"
)

// InstructionsText replaces the instructions once markers are on the map.
const InstructionsText = "Look at the map below.  If markers have appeared (they may be circles with numbers in them if clustered) then your data is ready to download.  If not, please contact the site admin (click on upper left corner of page, then navigate to 'contact')."

// InitialInstructions is shown before the first load.
const InitialInstructions = "Click the button to load the mural data."

// Export file metadata.
const (
	ExportContentType = "application/json"
	ExportFilename    = "mural_data.json"
)

// Controller owns one viewer: its map, the last fetched dataset, the
// instructions text and the download link.
type Controller struct {
	id     string
	source ports.FeatureSource
	blobs  ports.BlobStore
	bus    *Bus
	m      *Map

	mu           sync.Mutex
	gen          uint64
	cancel       context.CancelFunc
	dataset      *domain.FeatureCollection
	group        *ClusterGroup
	instructions string
	href         string
}

// NewController creates a controller drawing on m. bus may be nil.
func NewController(id string, m *Map, source ports.FeatureSource, blobs ports.BlobStore, bus *Bus) *Controller {
	if bus == nil {
		bus = NewBus()
	}
	return &Controller{
		id:           id,
		source:       source,
		blobs:        blobs,
		bus:          bus,
		m:            m,
		instructions: InitialInstructions,
	}
}

// LoadResult summarises a successful load.
type LoadResult struct {
	Features     int    `json:"features"`
	Markers      int    `json:"markers"`
	Instructions string `json:"instructions"`
}

// Load fetches the feature collection once and replaces the marker layer.
// A newer Load cancels an in-flight one; the older call returns
// domain.ErrSuperseded and leaves state alone. On failure the previous
// render is kept.
func (c *Controller) Load(ctx context.Context) (*LoadResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanViewerLoad)
	defer span.End()
	span.SetAttributes(attribute.String("viewer.session", c.id))

	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	c.emit(domain.ViewerEvent{Type: domain.EventLoadRequested})

	fc, err := c.fetch(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		metrics.ViewerLoads.WithLabelValues("superseded").Inc()
		return nil, domain.ErrSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		metrics.ViewerLoads.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("viewer load failed", "session", c.id, "error", err)
		c.emit(domain.ViewerEvent{Type: domain.EventLoadFailed, Error: err.Error()})
		return nil, err
	}

	group := NewClusterGroup(c.m.Options().MaxClusterRadius, c.m.BaseLayer().MaxZoom)
	located, indexes := fc.Located()
	for i, f := range located {
		group.AddMarker(domain.Marker{
			Location:     f.Geometry.Location(),
			Label:        f.Properties.Name(),
			FeatureIndex: indexes[i],
		})
	}

	c.dataset = fc
	c.group = group
	c.m.SetMarkerLayer(group)
	c.instructions = InstructionsText
	res := &LoadResult{Features: len(fc.Features), Markers: group.Len(), Instructions: c.instructions}
	c.mu.Unlock()

	metrics.ViewerLoads.WithLabelValues("succeeded").Inc()
	metrics.MarkersRendered.Add(float64(res.Markers))
	span.SetAttributes(attribute.Int("viewer.markers", res.Markers))
	slog.Debug("viewer loaded", "session", c.id, "features", res.Features, "markers", res.Markers)

	c.emit(domain.ViewerEvent{Type: domain.EventLoadSucceeded, Features: res.Features, Markers: res.Markers})
	return res, nil
}

func (c *Controller) fetch(ctx context.Context) (*domain.FeatureCollection, error) {
	data, err := c.source.FetchFeatures(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrFetchFailed) {
			return nil, err
		}
		return nil, errors.Join(domain.ErrFetchFailed, err)
	}
	return domain.DecodeFeatureCollection(data)
}

// Export serialises the loaded dataset into a JSON blob and returns its
// object URL, which also becomes the download link. The previous URL is
// revoked.
func (c *Controller) Export(ctx context.Context) (string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanViewerExport)
	defer span.End()

	c.emit(domain.ViewerEvent{Type: domain.EventExportRequested})

	c.mu.Lock()
	if c.dataset == nil {
		c.mu.Unlock()
		return "", domain.ErrNotLoaded
	}
	data, err := c.dataset.Raw()
	if err != nil {
		c.mu.Unlock()
		return "", err
	}

	href, err := c.blobs.Put(ctx, domain.Blob{
		ContentType: ExportContentType,
		Filename:    ExportFilename,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	prev := c.href
	c.href = href
	features := len(c.dataset.Features)
	c.mu.Unlock()

	if prev != "" && prev != href {
		if err := c.blobs.Revoke(ctx, prev); err != nil {
			slog.Warn("revoke object url", "session", c.id, "href", prev, "error", err)
		}
	}

	metrics.Exports.Inc()
	c.emit(domain.ViewerEvent{Type: domain.EventExportReady, Href: href, Features: features})
	return href, nil
}

// ID returns the controller's session id.
func (c *Controller) ID() string { return c.id }

// Bus returns the event bus.
func (c *Controller) Bus() *Bus { return c.bus }

// Map returns the map the controller draws on.
func (c *Controller) Map() *Map { return c.m }

// Instructions returns the current instructions text.
func (c *Controller) Instructions() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instructions
}

// DownloadHref returns the download link, or "" before the first export.
func (c *Controller) DownloadHref() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.href
}

// Dataset returns the last loaded collection, or nil.
func (c *Controller) Dataset() *domain.FeatureCollection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// Markers returns the markers of the current layer.
func (c *Controller) Markers() []domain.Marker {
	c.mu.Lock()
	g := c.group
	c.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Markers()
}

// Clusters returns the current layer's clusters at zoom.
func (c *Controller) Clusters(zoom float64) []domain.Cluster {
	c.mu.Lock()
	g := c.group
	c.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Clusters(zoom)
}

// Close cancels an in-flight load and revokes the download link.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	href := c.href
	c.href = ""
	c.mu.Unlock()

	if href != "" {
		if err := c.blobs.Revoke(ctx, href); err != nil {
			slog.Warn("revoke object url", "session", c.id, "href", href, "error", err)
		}
	}
}

func (c *Controller) emit(e domain.ViewerEvent) {
	e.SessionID = c.id
	e.Time = time.Now().UTC()
	c.bus.Emit(e)
}
