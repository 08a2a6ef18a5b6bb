package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "muralmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 60},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "muralmap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Scraper metrics
	PagesScraped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "localwiki",
		Name:      "pages_scraped_total",
		Help:      "Total mural pages fetched from the LocalWiki",
	})

	ScrapeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "localwiki",
		Name:      "scrape_errors_total",
		Help:      "Total LocalWiki scrape failures",
	}, []string{"stage"})

	CollectionBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "muralmap",
		Subsystem: "murals",
		Name:      "collection_build_duration_seconds",
		Help:      "Duration of a full mural dataset rebuild",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	// Viewer metrics
	MarkersRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "viewer",
		Name:      "markers_rendered_total",
		Help:      "Total markers placed by viewer loads",
	})

	ViewerLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "viewer",
		Name:      "loads_total",
		Help:      "Total viewer loads by outcome",
	}, []string{"outcome"})

	Exports = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "viewer",
		Name:      "exports_total",
		Help:      "Total dataset exports",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "muralmap",
		Subsystem: "viewer",
		Name:      "active_sessions",
		Help:      "Current number of viewer sessions",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "muralmap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "viewer",
		Name:      "events_dropped_total",
		Help:      "Viewer events dropped because a consumer fell behind",
	}, []string{"consumer"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "muralmap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// Route pattern keeps session and blob IDs out of the label set.
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
