package http

import (
	"embed"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

//go:embed static
var staticFS embed.FS

// clientConfig is what the browser script reads from /static/js/config.js.
type clientConfig struct {
	Center           [2]float64 `json:"center"`
	Zoom             float64    `json:"zoom"`
	TileURL          string     `json:"tileUrl"`
	ID               string     `json:"id"`
	MaxZoom          int        `json:"maxZoom"`
	Attribution      string     `json:"attribution"`
	MaxClusterRadius float64    `json:"maxClusterRadius"`
}

// SetupPage registers the index page, the generated client config, and the
// embedded static assets.
func SetupPage(app *fiber.App, deps *Dependencies) {
	app.Get("/", func(c *fiber.Ctx) error {
		data, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			return errInternal(c, "index page missing")
		}
		c.Set("Content-Type", fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(data)
	})

	app.Get("/static/js/config.js", ConfigScriptHandler(deps))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:       nethttp.FS(staticFS),
		PathPrefix: "static",
	}))
}

// ConfigScriptHandler renders the map access token and view as globals.
func ConfigScriptHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layer := deps.Map.BaseLayer
		cfg := clientConfig{
			Center:           [2]float64{deps.Map.Center.Lat, deps.Map.Center.Lon},
			Zoom:             deps.Map.Zoom,
			TileURL:          layer.URLTemplate,
			ID:               layer.ID,
			MaxZoom:          layer.MaxZoom,
			Attribution:      layer.Attribution,
			MaxClusterRadius: deps.Map.MaxClusterRadius,
		}
		opts, err := json.Marshal(cfg)
		if err != nil {
			return errInternal(c, err.Error())
		}
		key, err := json.Marshal(layer.AccessToken)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Content-Type", "application/javascript; charset=utf-8")
		return c.SendString(fmt.Sprintf("const API_KEY = %s;\nconst MAP_OPTIONS = %s;\n", key, opts))
	}
}
