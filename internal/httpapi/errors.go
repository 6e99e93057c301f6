package httpapi

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/passbi/routecore/internal/apperr"
)

// ErrorHandler maps an apperr.Kind to an HTTP status, generalizing the
// teacher's customErrorHandler (cmd/api/main.go) from "fiber.Error or
// 500" to one status per failure mode.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	} else {
		switch apperr.KindOf(err) {
		case apperr.InvalidInput:
			code = fiber.StatusBadRequest
		case apperr.NoDataForMonth:
			code = fiber.StatusNotFound
		case apperr.TransientUpstream:
			code = fiber.StatusBadGateway
		case apperr.ResourceExhausted:
			code = fiber.StatusServiceUnavailable
		case apperr.Internal:
			code = fiber.StatusInternalServerError
		}
	}

	log.Printf("httpapi: request error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
