// Package httpapi wires the fiber handlers of spec §6.1 onto the
// Planner, Spatial Store and DGVI Evaluator, following the teacher's
// internal/api package layout (one handler per endpoint, a shared
// fiber.Map JSON response shape, errors funneled through a single
// ErrorHandler).
package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/passbi/routecore/internal/cache"
	"github.com/passbi/routecore/internal/config"
	"github.com/passbi/routecore/internal/db"
	"github.com/passbi/routecore/internal/dgvi"
	"github.com/passbi/routecore/internal/greenness"
	"github.com/passbi/routecore/internal/planner"
	"github.com/passbi/routecore/internal/spatialstore"
)

// Handlers bundles the collaborators every endpoint needs.
type Handlers struct {
	store     *spatialstore.Store
	eval      *dgvi.Evaluator
	planner   *planner.Planner
	greenness *greenness.Client
	cfg       *config.Config
}

// New builds a Handlers set.
func New(store *spatialstore.Store, eval *dgvi.Evaluator, pl *planner.Planner, green *greenness.Client, cfg *config.Config) *Handlers {
	return &Handlers{store: store, eval: eval, planner: pl, greenness: green, cfg: cfg}
}

// Health handles GET /health, grounded on the teacher's api.Health
// (internal/api/handlers.go) but checking both collaborators this
// service actually depends on.
func (h *Handlers) Health(c *fiber.Ctx) error {
	ctx := c.Context()

	dbErr := db.HealthCheck(ctx, h.cfg)
	redisErr := cache.HealthCheck(ctx, h.cfg)

	status := "ok"
	if dbErr != nil || redisErr != nil {
		status = "degraded"
	}

	body := fiber.Map{"status": status}
	if dbErr != nil {
		body["database"] = dbErr.Error()
	} else {
		body["database"] = "ok"
	}
	if redisErr != nil {
		body["redis"] = redisErr.Error()
	} else {
		body["redis"] = "ok"
	}

	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
