package httpapi

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/cache"
	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/planner"
)

// planRequestBody is spec §6.1's plan-routes request payload.
type planRequestBody struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Month       string  `json:"month"`
	WTime       float64 `json:"w_time"`
	WGreen      float64 `json:"w_green"`
	MaxResults  int     `json:"max_results"`
}

type planResponse struct {
	Routes []routePlanDTO `json:"routes"`
}

// PlanRoutes handles POST plan-routes: parses the request, serves a
// cached answer if one exists, otherwise computes under a distributed
// lock, following the teacher's computeRoute "compute once, cache,
// serve" pattern (internal/api/handlers.go + internal/cache/redis.go).
func (h *Handlers) PlanRoutes(c *fiber.Ctx) error {
	var body planRequestBody
	if err := c.BodyParser(&body); err != nil {
		return apperr.Wrap(apperr.InvalidInput, "malformed request body", err)
	}

	origin, err := parseCoordinates(body.Origin)
	if err != nil {
		return err
	}
	destination, err := parseCoordinates(body.Destination)
	if err != nil {
		return err
	}
	if body.Month == "" {
		return apperr.New(apperr.InvalidInput, "month is required")
	}
	if err := parseMonth(body.Month); err != nil {
		return err
	}

	prefs := models.Preferences{WTime: body.WTime, WGreen: body.WGreen}
	if !prefs.Valid() {
		return apperr.New(apperr.InvalidInput, "w_time and w_green must be non-negative and sum to 1")
	}

	ctx := c.Context()
	planKey := cache.PlanKey(origin[1], origin[0], destination[1], destination[0], body.Month, prefs)

	if plans, err := cache.GetPlans(ctx, h.cfg, planKey); err == nil && plans != nil {
		return c.JSON(toPlanResponse(plans))
	}

	lockKey := cache.LockKey(planKey)
	acquired, err := cache.AcquireLock(ctx, h.cfg, lockKey, cache.LockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		plans, err := cache.WaitForPlans(ctx, h.cfg, planKey, h.cfg.PlanDeadline)
		if err != nil {
			return err
		}
		return c.JSON(toPlanResponse(plans))
	}
	defer cache.ReleaseLock(ctx, h.cfg, lockKey)

	plans, err := h.planner.Plan(ctx, planner.Request{
		Origin:      origin,
		Destination: destination,
		Month:       body.Month,
		Preferences: prefs,
		MaxResults:  body.MaxResults,
	})
	if err != nil {
		return err
	}

	if err := cache.SetPlans(ctx, h.cfg, planKey, plans, cache.DefaultTTL); err != nil {
		// a failed write only costs a future cache miss, not this response
		_ = err
	}

	return c.JSON(toPlanResponse(plans))
}

func toPlanResponse(plans []models.RoutePlan) planResponse {
	out := planResponse{Routes: make([]routePlanDTO, 0, len(plans))}
	for _, rp := range plans {
		out.Routes = append(out.Routes, toRoutePlanDTO(rp))
	}
	return out
}

// AvailableMonths handles GET available-months.
func (h *Handlers) AvailableMonths(c *fiber.Ctx) error {
	months, err := h.store.AvailableMonths(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"months": months})
}

// NearbySites handles GET nearby-sites?point=lat,lon&max_distance=m, per
// spec §6.1. max_distance defaults to walking_speed * max_walking_time
// (spec §6.4) when the caller omits it.
func (h *Handlers) NearbySites(c *fiber.Ctx) error {
	coordStr := c.Query("point")
	if coordStr == "" {
		return apperr.New(apperr.InvalidInput, "missing required parameter: point")
	}
	point, err := parseCoordinates(coordStr)
	if err != nil {
		return err
	}

	maxDistance := h.cfg.WalkingSpeedMPS * h.cfg.MaxWalkingTime.Seconds()
	if raw := c.Query("max_distance"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return apperr.New(apperr.InvalidInput, "max_distance must be a positive number")
		}
		maxDistance = parsed
	}

	sites, err := h.store.StopsWithinAndNearest(c.Context(), point, maxDistance, planner.NearestSiteCount)
	if err != nil {
		return err
	}
	if len(sites) > planner.MaxNearbySites {
		sites = sites[:planner.MaxNearbySites]
	}

	out := make([]fiber.Map, 0, len(sites))
	for _, s := range sites {
		out = append(out, fiber.Map{
			"site_id":          s.Site.ID,
			"name":             s.Site.Name,
			"walking_distance": fmt.Sprintf("%.1f", s.WalkingDistance),
		})
	}
	return c.JSON(fiber.Map{"sites": out})
}
