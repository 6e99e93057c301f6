package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/routecore/internal/apperr"
)

func TestErrorHandlerMapsKindToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", apperr.New(apperr.InvalidInput, "bad request"), fiber.StatusBadRequest},
		{"no data for month", apperr.New(apperr.NoDataForMonth, "nothing for 2099-01"), fiber.StatusNotFound},
		{"transient upstream", apperr.New(apperr.TransientUpstream, "feed down"), fiber.StatusBadGateway},
		{"resource exhausted", apperr.New(apperr.ResourceExhausted, "deadline exceeded"), fiber.StatusServiceUnavailable},
		{"internal", apperr.New(apperr.Internal, "unexpected"), fiber.StatusInternalServerError},
		{"plain error defaults to internal", assertErr("boom"), fiber.StatusInternalServerError},
		{"fiber error keeps its own code", fiber.NewError(fiber.StatusTeapot, "teapot"), fiber.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/x", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func assertErr(msg string) error { return simpleError(msg) }
