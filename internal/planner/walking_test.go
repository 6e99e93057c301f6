package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/passbi/routecore/internal/models"
)

func routeWithEdges(id string, edgeIDs ...int64) models.RoutePlan {
	return models.RoutePlan{
		RouteID:   id,
		RouteType: models.RouteWalking,
		Segments:  []models.Segment{{Kind: models.SegmentWalking, EdgeIDs: edgeIDs}},
	}
}

func TestDedupeWalking(t *testing.T) {
	t.Run("keeps first two distinct fingerprints in priority order", func(t *testing.T) {
		user := routeWithEdges("user", 1, 2, 3)
		asap := routeWithEdges("asap", 1, 2, 3) // same path as user
		groot := routeWithEdges("groot", 4, 5)

		kept := dedupeWalking([]models.RoutePlan{user, asap, groot})

		assert.Len(t, kept, 2)
		assert.Equal(t, "user", kept[0].RouteID)
		assert.Equal(t, "groot", kept[1].RouteID)
	})

	t.Run("all distinct keeps only two even with three candidates", func(t *testing.T) {
		a := routeWithEdges("a", 1)
		b := routeWithEdges("b", 2)
		c := routeWithEdges("c", 3)

		kept := dedupeWalking([]models.RoutePlan{a, b, c})

		assert.Len(t, kept, 2)
		assert.Equal(t, "a", kept[0].RouteID)
		assert.Equal(t, "b", kept[1].RouteID)
	})

	t.Run("empty input yields no survivors", func(t *testing.T) {
		assert.Empty(t, dedupeWalking(nil))
	})
}

func TestWalkingStrategiesOrder(t *testing.T) {
	strategies := walkingStrategies(models.Preferences{WTime: 0.3, WGreen: 0.7})

	assert.Equal(t, []string{"user", "ASAP", "GROOT"}, []string{
		strategies[0].Name, strategies[1].Name, strategies[2].Name,
	})
	assert.Equal(t, models.Preferences{WTime: 0.3, WGreen: 0.7}, strategies[0].Prefs)
	assert.Equal(t, models.Preferences{WTime: 1, WGreen: 0}, strategies[1].Prefs)
	assert.Equal(t, models.Preferences{WTime: 0, WGreen: 1}, strategies[2].Prefs)
}
