package localwiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/pkg/metrics"
	"github.com/samirrijal/muralmap/internal/pkg/telemetry"
)

// maxPageBytes caps a single wiki page download.
const maxPageBytes = 8 << 20

// Options configures a Client.
type Options struct {
	Site          Site
	Throttle      time.Duration // minimum gap between page requests
	Timeout       time.Duration
	UserAgent     string
	MaxPages      int // 0 means no limit
	CreditHelpURL string
}

// Client implements ports.MuralScraper against the LocalWiki.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	opts    Options
}

// NewClient creates a scraper client. A zero throttle disables rate limiting.
func NewClient(opts Options) *Client {
	limit := rate.Inf
	if opts.Throttle > 0 {
		limit = rate.Every(opts.Throttle)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
	}
}

// Scrape fetches the murals index and then every mural page on it.
// A page that fails to download keeps its index entry with a
// "not collected" popup; only a failed index download is fatal.
func (c *Client) Scrape(ctx context.Context) ([]domain.WikiMural, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanScrape)
	defer span.End()

	index, err := c.get(ctx, c.opts.Site.IndexURL)
	if err != nil {
		metrics.ScrapeErrors.WithLabelValues("index").Inc()
		return nil, fmt.Errorf("fetch index: %w", err)
	}

	entries, skipped := ParseIndex(string(index), c.opts.Site.BaseURL)
	if skipped > 0 {
		metrics.ScrapeErrors.WithLabelValues("index_entry").Add(float64(skipped))
		slog.Warn("unparseable index entries", "skipped", skipped)
	}
	if c.opts.MaxPages > 0 && len(entries) > c.opts.MaxPages {
		entries = entries[:c.opts.MaxPages]
	}
	span.SetAttributes(attribute.Int("murals.entries", len(entries)))

	murals := make([]domain.WikiMural, 0, len(entries))
	for i, entry := range entries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		mural := domain.WikiMural{
			Name:     entry.Name,
			PageURL:  entry.PageURL,
			Location: entry.Location,
			Popup:    NotCollected,
		}

		page, err := c.page(ctx, entry.PageURL)
		if err != nil {
			metrics.ScrapeErrors.WithLabelValues("page").Inc()
			slog.Warn("mural page not collected", "index", i, "url", entry.PageURL, "error", err)
		} else {
			mural.Popup = Popup(entry, page, c.opts.CreditHelpURL)
			mural.Reserved = page.NotVisible
		}
		metrics.PagesScraped.Inc()
		slog.Debug("mural page scraped", "index", i, "name", entry.Name)

		murals = append(murals, mural)
	}

	return murals, nil
}

func (c *Client) page(ctx context.Context, url string) (*Page, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParsePage(bytes.NewReader(body), c.opts.Site)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}
