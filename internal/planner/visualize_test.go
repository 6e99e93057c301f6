package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/passbi/routecore/internal/models"
)

func TestEnrichVisualizationSkipsNonRideSegments(t *testing.T) {
	p := &Planner{} // nil store/solver: must never be dereferenced for walking-only routes
	routes := []models.RoutePlan{
		{Segments: []models.Segment{{Kind: models.SegmentWalking}, {Kind: models.SegmentBusWaiting}}},
	}

	assert.NotPanics(t, func() {
		p.enrichVisualization(nil, routes)
	})
}
