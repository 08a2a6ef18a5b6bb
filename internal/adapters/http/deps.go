package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/muralmap/internal/adapters/postgres"
	"github.com/samirrijal/muralmap/internal/adapters/valkey"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/core/usecases"
	"github.com/samirrijal/muralmap/internal/viewer"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Murals  *usecases.MuralService
	Viewers *viewer.Registry
	Blobs   ports.BlobStore
	Map     viewer.MapOptions // initial view handed to browsers and sessions
	NATS    *nats.Conn
	DB      *postgres.DB
	Cache   *valkey.Cache
}
