package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cacheRule maps a path to a Cache-Control value. A rule ending in "/"
// matches by prefix, otherwise the path must be equal.
type cacheRule struct {
	path  string
	value string
}

// First match wins.
var cacheRules = []cacheRule{
	{"/v1/health", "public, max-age=10"},
	{"/v1/ready", "public, max-age=10"},
	{"/metrics", "no-cache"},
	{"/graphql", "private, max-age=0"},
	// The collection is rebuilt at most a few times a day.
	{"/get_mural_data", "public, max-age=300"},
	{"/v1/murals", "public, max-age=300"},
	{"/v1/viewer/", "no-store"},
	{"/blob/", "private, no-store"},
	// Carries the tile token and map options, which change with config.
	{"/static/js/config.js", "no-cache"},
	{"/static/", "public, max-age=3600"},
	{"/", "public, max-age=3600"},
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if path == r.path || (strings.HasSuffix(r.path, "/") && r.path != "/" && strings.HasPrefix(path, r.path)) {
			return r.value
		}
	}
	return ""
}

// CachingMiddleware sets Cache-Control on GET responses that did not set
// their own.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}
		if v := cacheControlFor(c.Path()); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}
