package ports

import (
	"context"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// FeatureSource returns the raw feature collection document.
type FeatureSource interface {
	FetchFeatures(ctx context.Context) ([]byte, error)
}

// MuralScraper collects murals from the LocalWiki.
type MuralScraper interface {
	Scrape(ctx context.Context) ([]domain.WikiMural, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishViewerEvent(ctx context.Context, event domain.ViewerEvent) error
	PublishDataRefreshed(ctx context.Context, refresh domain.DataRefresh) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
