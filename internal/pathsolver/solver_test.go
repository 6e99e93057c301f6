package pathsolver

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/routecore/internal/models"
)

func TestShortestEdgePathEqualVerticesShortCircuits(t *testing.T) {
	s := New(nil)
	result, err := s.ShortestEdgePath(context.Background(), 7, 7, PureLengthCost)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.EdgeIDs)
	assert.Equal(t, 0.0, result.TotalCostlessLength)
}

func TestPreferenceCost(t *testing.T) {
	edge := models.RoadEdge{ID: 1, LengthNormalized: 0.4}
	dgvi := map[int64]float64{1: 0.25}

	cost := PreferenceCost(models.Preferences{WTime: 0.5, WGreen: 0.5}, dgvi)
	assert.InDelta(t, 0.5*0.4+0.5*(1-0.25), cost(edge), 1e-9)

	t.Run("absent edge defaults dgvi to zero", func(t *testing.T) {
		cost := PreferenceCost(models.Preferences{WTime: 0, WGreen: 1}, map[int64]float64{})
		assert.InDelta(t, 1.0, cost(edge), 1e-9)
	})
}

func TestPureLengthCost(t *testing.T) {
	edge := models.RoadEdge{LengthMeters: 123.4}
	assert.Equal(t, 123.4, PureLengthCost(edge))
}

func TestMergeGeometryDedupesSharedEndpoints(t *testing.T) {
	snap := lineSnapshot()
	snap.Edges[10] = models.RoadEdge{ID: 10, Geometry: orb.LineString{{0, 0}, {0, 1}}}
	snap.Edges[11] = models.RoadEdge{ID: 11, Geometry: orb.LineString{{0, 1}, {0, 2}}}

	merged, err := mergeGeometry(snap, []int64{10, 11})
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{0, 0}, {0, 1}, {0, 2}}, merged)
}

func TestPointsEqual(t *testing.T) {
	assert.True(t, pointsEqual(orb.Point{1, 2}, orb.Point{1, 2}))
	assert.False(t, pointsEqual(orb.Point{1, 2}, orb.Point{1, 3}))
}
