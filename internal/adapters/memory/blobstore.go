// Package memory holds process-local adapters.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// BlobPrefix is the path under which object URLs are served.
const BlobPrefix = "/blob/"

// BlobStore implements ports.BlobStore in memory. Blobs live until revoked.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]domain.Blob
}

// NewBlobStore creates an empty store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]domain.Blob)}
}

// Put stores b under a fresh id and returns its object URL.
func (s *BlobStore) Put(ctx context.Context, b domain.Blob) (string, error) {
	b.ID = uuid.NewString()

	s.mu.Lock()
	s.blobs[b.ID] = b
	s.mu.Unlock()

	return BlobPrefix + b.ID, nil
}

// Get returns the blob with the given id.
func (s *BlobStore) Get(ctx context.Context, id string) (*domain.Blob, error) {
	s.mu.RLock()
	b, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return &b, nil
}

// Revoke releases the blob behind an object URL. Unknown URLs are ignored.
func (s *BlobStore) Revoke(ctx context.Context, href string) error {
	id := strings.TrimPrefix(href, BlobPrefix)
	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
	return nil
}

// Len reports how many blobs are held.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
