package httpapi

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/routecore/internal/models"
)

func TestToRoutePlanDTOBuildsInstructionsAndGeoJSON(t *testing.T) {
	rp := models.RoutePlan{
		RouteID:       "walk-1",
		RouteType:     models.RouteWalking,
		TotalDuration: 12 * time.Minute,
		Segments: []models.Segment{
			{Kind: models.SegmentWalking, Duration: 12 * time.Minute, DistanceMeters: 1000, Geometry: orb.LineString{{18.06, 59.33}, {18.07, 59.34}}},
		},
	}

	dto := toRoutePlanDTO(rp)

	assert.Equal(t, "walk-1", dto.RouteID)
	assert.Equal(t, "Walk, 12 min", dto.Summary)
	require.Len(t, dto.Instructions, 1)
	assert.Contains(t, dto.Instructions[0], "Walk 1000 m")
	require.NotNil(t, dto.GeoJSON)
	assert.Len(t, dto.GeoJSON.Features, 1)
}

func TestToRoutePlanDTOCapturesTransferSummary(t *testing.T) {
	rp := models.RoutePlan{
		RouteType: models.RouteTransferBus,
		Segments: []models.Segment{
			{
				Kind: models.SegmentBusWaiting,
				Transfer: &models.TransferInfo{
					FromLine:    "4",
					ToLine:      "7",
					WaitingTime: 90 * time.Second,
				},
			},
		},
	}

	dto := toRoutePlanDTO(rp)

	require.NotNil(t, dto.TransferSummary)
	assert.Equal(t, "4", dto.TransferSummary.FromLine)
	assert.Equal(t, "7", dto.TransferSummary.ToLine)
	assert.Equal(t, 90.0, dto.TransferSummary.WaitingSeconds)
}

func TestAppendSegmentFeatureSkipsEmptyGeometry(t *testing.T) {
	dto := toRoutePlanDTO(models.RoutePlan{
		Segments: []models.Segment{{Kind: models.SegmentWalking}}, // no geometry
	})
	assert.Empty(t, dto.GeoJSON.Features)
}

func TestSummarizeByRouteType(t *testing.T) {
	assert.Equal(t, "Direct bus, 8 min", summarize(models.RoutePlan{RouteType: models.RouteDirectBus, TotalDuration: 8 * time.Minute}))
	assert.Equal(t, "One transfer, 25 min", summarize(models.RoutePlan{RouteType: models.RouteTransferBus, TotalDuration: 25 * time.Minute}))
}
