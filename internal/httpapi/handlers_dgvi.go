package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/models"
)

// DGVIStats handles GET dgvi-stats/:month.
func (h *Handlers) DGVIStats(c *fiber.Ctx) error {
	month := c.Params("month")
	if err := parseMonth(month); err != nil {
		return err
	}

	stats, err := h.store.DGVIStats(c.Context(), month)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"month":    stats.Month,
		"count":    stats.Count,
		"min_norm": stats.MinNorm,
		"max_norm": stats.MaxNorm,
		"avg_norm": stats.AvgNorm,
	})
}

// GVIPoints handles GET gvi-points/:month.
func (h *Handlers) GVIPoints(c *fiber.Ctx) error {
	month := c.Params("month")
	if err := parseMonth(month); err != nil {
		return err
	}

	limit := c.QueryInt("limit", 5000)
	points, err := h.store.GVIPoints(c.Context(), month, limit)
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(points))
	for _, pt := range points {
		out = append(out, fiber.Map{
			"id":    pt.ID,
			"lon":   pt.Point[0],
			"lat":   pt.Point[1],
			"value": pt.Value,
		})
	}
	return c.JSON(fiber.Map{"points": out})
}

// MaxGVIPointsPerCall bounds add-gvi-points per spec §6.1.
const MaxGVIPointsPerCall = 20

type gviPointBody struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type addGVIPointsBody struct {
	Month  string         `json:"month"`
	Points []gviPointBody `json:"points"`
}

// AddGVIPoints handles POST add-gvi-points: it scores each raw
// coordinate through the out-of-scope greenness service and persists
// the returned values (spec §6.1), rather than trusting a
// caller-supplied value.
func (h *Handlers) AddGVIPoints(c *fiber.Ctx) error {
	var body addGVIPointsBody
	if err := c.BodyParser(&body); err != nil {
		return apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}
	if err := parseMonth(body.Month); err != nil {
		return err
	}
	if len(body.Points) == 0 {
		return apperr.New(apperr.InvalidInput, "points must be non-empty")
	}
	if len(body.Points) > MaxGVIPointsPerCall {
		return apperr.New(apperr.InvalidInput, fmt.Sprintf("at most %d points per call", MaxGVIPointsPerCall))
	}

	coords := make([]orb.Point, len(body.Points))
	for i, p := range body.Points {
		coords[i] = orb.Point{p.Lon, p.Lat}
	}

	values, err := h.greenness.Score(c.Context(), coords)
	if err != nil {
		return err
	}

	points := make([]models.GVIPoint, len(coords))
	for i, coord := range coords {
		points[i] = models.GVIPoint{
			Point: coord,
			Month: body.Month,
			Value: values[i],
		}
	}

	if err := h.store.InsertGVIPoints(c.Context(), points); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"inserted": len(points)})
}

// UpdateDGVI handles POST update-dgvi/:month, triggering a synchronous
// rebuild (spec §4.3.1). Operators wanting an async rebuild should use
// cmd/rebuild-dgvi instead.
func (h *Handlers) UpdateDGVI(c *fiber.Ctx) error {
	month := c.Params("month")
	if err := parseMonth(month); err != nil {
		return err
	}

	if err := h.eval.RebuildMonth(c.Context(), month); err != nil {
		return err
	}

	stats, err := h.store.DGVIStats(c.Context(), month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"month": stats.Month,
		"count": stats.Count,
	})
}
