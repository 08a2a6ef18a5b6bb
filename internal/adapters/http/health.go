package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// probe is one readiness check. A nil check means the dependency is not
// configured, which does not fail readiness.
type probe struct {
	name  string
	check func(ctx context.Context) error
}

func (d *Dependencies) probes() []probe {
	ps := []probe{{name: "murals", check: func(context.Context) error {
		if d.Murals == nil || d.Viewers == nil {
			return errors.New("not configured")
		}
		return nil
	}}}
	if d.DB != nil {
		ps = append(ps, probe{name: "database", check: d.DB.Ping})
	} else {
		ps = append(ps, probe{name: "database"})
	}
	if d.NATS != nil {
		ps = append(ps, probe{name: "nats", check: func(context.Context) error {
			if !d.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}})
	} else {
		ps = append(ps, probe{name: "nats"})
	}
	if d.Cache != nil {
		ps = append(ps, probe{name: "cache", check: d.Cache.Ping})
	} else {
		ps = append(ps, probe{name: "cache"})
	}
	return ps
}

// ReadyHandler runs the probes and reports 503 when any configured one fails.
// The mural service is required; the stores behind it are optional.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		ready := true
		for _, p := range deps.probes() {
			if p.check == nil {
				checks[p.name] = "not configured"
				continue
			}
			if err := p.check(ctx); err != nil {
				checks[p.name] = "error: " + err.Error()
				ready = false
				continue
			}
			checks[p.name] = "ok"
		}

		body := fiber.Map{"status": "ready", "checks": checks}
		if deps.Viewers != nil {
			body["sessions"] = deps.Viewers.Len()
		}
		if !ready {
			body["status"] = "not ready"
			return c.Status(fiber.StatusServiceUnavailable).JSON(body)
		}
		return c.JSON(body)
	}
}
