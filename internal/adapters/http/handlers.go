package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/viewer"
)

// MuralDataHandler serves the mural feature collection the page loads.
func MuralDataHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Murals == nil {
			return errUnavailable(c, "mural service not available")
		}
		data, err := deps.Murals.Collection(c.UserContext())
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("mural data", "error", err)
			return domainError(c, err)
		}
		c.Set("Content-Type", fiber.MIMEApplicationJSON)
		return c.Send(data)
	}
}

// ListMuralsHandler returns the flattened mural records.
func ListMuralsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pg := pageFromQuery(c)
		murals, total, err := deps.Murals.List(c.UserContext(), pg.Offset, pg.Limit)
		if err != nil {
			return domainError(c, err)
		}
		if murals == nil {
			murals = []domain.Mural{}
		}

		pg.Total = total
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: murals, Pagination: pg})
	}
}

// RefreshMuralsHandler rebuilds the collection from the wiki and extras.
func RefreshMuralsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Murals.Refresh(c.UserContext())
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("mural refresh", "error", err)
			return domainError(c, err)
		}
		return c.JSON(r)
	}
}

// BlobHandler downloads an exported file behind an object URL.
func BlobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		blob, err := deps.Blobs.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		c.Set("Content-Type", blob.ContentType)
		c.Set("Content-Disposition", `attachment; filename="`+blob.Filename+`"`)
		return c.Send(blob.Data)
	}
}

// ---- Viewer sessions ----

// MapView is the client-facing view of a session's map.
type MapView struct {
	Center           domain.GeoPoint `json:"center"`
	Zoom             float64         `json:"zoom"`
	TileURL          string          `json:"tile_url"`
	MaxZoom          int             `json:"max_zoom"`
	Attribution      string          `json:"attribution"`
	MaxClusterRadius float64         `json:"max_cluster_radius"`
}

// SessionResponse describes a viewer session.
type SessionResponse struct {
	ID           string  `json:"id"`
	Map          MapView `json:"map"`
	Instructions string  `json:"instructions"`
	DownloadHref string  `json:"download_href,omitempty"`
}

// LoadResponse is returned by a successful load.
type LoadResponse struct {
	Features     int             `json:"features"`
	Markers      []domain.Marker `json:"markers"`
	Instructions string          `json:"instructions"`
}

func mapView(opts viewer.MapOptions) MapView {
	return MapView{
		Center:           opts.Center,
		Zoom:             opts.Zoom,
		TileURL:          opts.BaseLayer.ClientTemplate(),
		MaxZoom:          opts.BaseLayer.MaxZoom,
		Attribution:      opts.BaseLayer.Attribution,
		MaxClusterRadius: opts.MaxClusterRadius,
	}
}

func sessionResponse(ctrl *viewer.Controller) SessionResponse {
	return SessionResponse{
		ID:           ctrl.ID(),
		Map:          mapView(ctrl.Map().Options()),
		Instructions: ctrl.Instructions(),
		DownloadHref: ctrl.DownloadHref(),
	}
}

// CreateSessionHandler initialises a map and returns its view.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, err := deps.Viewers.Create(c.UserContext())
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sessionResponse(ctrl))
	}
}

// GetSessionHandler returns the current state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, err := deps.Viewers.Get(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(sessionResponse(ctrl))
	}
}

// LoadSessionHandler fetches the feature collection into the session's map.
func LoadSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, err := deps.Viewers.Get(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		res, err := ctrl.Load(c.UserContext())
		if err != nil {
			return domainError(c, err)
		}
		markers := ctrl.Markers()
		if markers == nil {
			markers = []domain.Marker{}
		}
		return c.JSON(LoadResponse{
			Features:     res.Features,
			Markers:      markers,
			Instructions: res.Instructions,
		})
	}
}

// SessionClustersHandler returns the session's clusters at a zoom level.
func SessionClustersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, err := deps.Viewers.Get(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}

		zoom := ctrl.Map().Zoom()
		if raw := c.Query("zoom"); raw != "" {
			zoom, err = strconv.ParseFloat(raw, 64)
			if err != nil || zoom < 0 || zoom > 24 {
				return errBadRequest(c, "zoom must be a number between 0 and 24")
			}
		}
		if ctrl.Dataset() == nil {
			return domainError(c, domain.ErrNotLoaded)
		}

		clusters := ctrl.Clusters(zoom)
		if clusters == nil {
			clusters = []domain.Cluster{}
		}
		return c.JSON(fiber.Map{"zoom": zoom, "clusters": clusters})
	}
}

// ExportSessionHandler exports the loaded dataset and returns its object URL.
func ExportSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, err := deps.Viewers.Get(c.Params("id"))
		if err != nil {
			return domainError(c, err)
		}
		href, err := ctrl.Export(c.UserContext())
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(fiber.Map{"href": href})
	}
}

// DeleteSessionHandler closes a session and revokes its object URL.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Viewers.Delete(c.UserContext(), c.Params("id")); err != nil {
			return domainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
