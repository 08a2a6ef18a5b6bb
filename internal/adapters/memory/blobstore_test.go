package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

func TestBlobStore_PutGetRevoke(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()

	href, err := s.Put(ctx, domain.Blob{ContentType: "application/json", Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(href, "/blob/") {
		t.Fatalf("unexpected href %q", href)
	}

	id := strings.TrimPrefix(href, "/blob/")
	b, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.ID != id || string(b.Data) != `{}` || b.ContentType != "application/json" {
		t.Errorf("unexpected blob %+v", b)
	}

	if err := s.Revoke(ctx, href); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, domain.ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound after revoke, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestBlobStore_DistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()
	a, _ := s.Put(ctx, domain.Blob{})
	b, _ := s.Put(ctx, domain.Blob{})
	if a == b {
		t.Errorf("expected distinct hrefs, got %q twice", a)
	}
}

func TestBlobStore_RevokeUnknown(t *testing.T) {
	if err := NewBlobStore().Revoke(context.Background(), "/blob/unknown"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
