package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}

	_ = c.Set(ctx, "k", []byte("v"), 60)
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v, got %q, %v", got, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestCache_NoTTLAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = c.Delete(ctx, "k")
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected ErrMiss after delete, got %v", err)
	}
}
