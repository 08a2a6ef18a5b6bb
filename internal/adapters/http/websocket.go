package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	natsadapter "github.com/samirrijal/muralmap/internal/adapters/nats"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/pkg/metrics"
	"github.com/samirrijal/muralmap/internal/viewer"
)

// A slow client gets socketWriteTimeout per frame; the bus relay queues up
// to socketBuffer events for it before dropping.
const (
	socketWriteTimeout = 10 * time.Second
	socketBuffer       = 16
)

// ViewerSocketGuard rejects upgrades for unknown sessions.
func ViewerSocketGuard(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := deps.Viewers.Get(c.Params("id")); err != nil {
			return domainError(c, err)
		}
		return c.Next()
	}
}

// ViewerSocketHandler relays one session's viewer events to the client.
// With NATS the events come from the session's subjects; without it they
// come straight off the session's bus.
func ViewerSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sessionID := c.Params("id")
		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr, "session", sessionID)

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		write := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			_ = c.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if deps.NATS != nil {
			sub, err := deps.NATS.Subscribe(natsadapter.ViewerSubject(sessionID, "*"), func(msg *nats.Msg) {
				var s structpb.Struct
				if err := proto.Unmarshal(msg.Data, &s); err != nil {
					slog.Warn("ws relay decode", "subject", msg.Subject, "error", err)
					return
				}
				data, err := protojson.Marshal(&s)
				if err != nil {
					return
				}
				_ = write(data)
			})
			if err != nil {
				slog.Error("ws subscribe", "session", sessionID, "error", err)
				return
			}
			defer func() { _ = sub.Unsubscribe() }()
		} else {
			ctrl, err := deps.Viewers.Get(sessionID)
			if err != nil {
				_ = c.WriteJSON(fiber.Map{"error": err.Error()})
				return
			}
			relay, stop := viewer.Async("websocket", socketBuffer, func(e domain.ViewerEvent) {
				data, err := json.Marshal(e)
				if err != nil {
					return
				}
				_ = write(data)
			})
			off := ctrl.Bus().OnAny(relay)
			defer stop()
			defer off()
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					_ = c.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Clients only listen; reading detects the close.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		slog.Info("ws client disconnected", "remote", remoteAddr, "session", sessionID)
	}
}
