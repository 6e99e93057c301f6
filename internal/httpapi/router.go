package httpapi

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires every endpoint of spec §6.1 onto app, following
// the teacher's flat route-registration block in cmd/api/main.go.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)

	app.Post("/v1/plan-routes", h.PlanRoutes)
	app.Get("/v1/available-months", h.AvailableMonths)
	app.Get("/v1/nearby-sites", h.NearbySites)
	app.Get("/v1/dgvi-stats/:month", h.DGVIStats)
	app.Get("/v1/gvi-points/:month", h.GVIPoints)
	app.Post("/v1/add-gvi-points", h.AddGVIPoints)
	app.Post("/v1/update-dgvi/:month", h.UpdateDGVI)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})
}
