package ports

import (
	"context"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// ExtraMuralSource supplies hand-maintained murals that are not on the wiki.
type ExtraMuralSource interface {
	ExtraMurals(ctx context.Context) ([]domain.Mural, error)
}

// ExtraMuralRepository persists hand-maintained murals.
type ExtraMuralRepository interface {
	ExtraMuralSource
	UpsertBatch(ctx context.Context, murals []domain.Mural) error
}

// BlobStore holds exported files and hands out object URLs for them.
type BlobStore interface {
	// Put stores the blob and returns its object URL.
	Put(ctx context.Context, blob domain.Blob) (string, error)
	// Get resolves a blob by ID.
	Get(ctx context.Context, id string) (*domain.Blob, error)
	// Revoke releases the blob behind an object URL.
	Revoke(ctx context.Context, href string) error
}
