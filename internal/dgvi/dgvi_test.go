package dgvi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/passbi/routecore/internal/spatialstore"
)

func TestIntegrateDGVI(t *testing.T) {
	t.Run("no matched points contributes zero", func(t *testing.T) {
		total := integrateDGVI(nil, 100)
		assert.Equal(t, 0.0, total)
	})

	t.Run("zero-length edge contributes zero regardless of matches", func(t *testing.T) {
		matches := []spatialstore.GVIMatch{{Parameter: 0.5, Value: 2}}
		total := integrateDGVI(matches, 0)
		assert.Equal(t, 0.0, total)
	})

	t.Run("single matched point at value 1 contributes zero over full length", func(t *testing.T) {
		matches := []spatialstore.GVIMatch{{Parameter: 0.5, Value: 1}}
		total := integrateDGVI(matches, 50)
		assert.InDelta(t, 0.0, total, 1e-9)
	})

	t.Run("uniform value above 1 scales linearly with length", func(t *testing.T) {
		matches := []spatialstore.GVIMatch{
			{Parameter: 0.2, Value: 1.5},
			{Parameter: 0.8, Value: 1.5},
		}
		total := integrateDGVI(matches, 100)
		// endpoints synthesize to 1.5 too, so the whole edge is at 1.5:
		// 1.0 * 100 * (1.5 - 1) = 50
		assert.InDelta(t, 50.0, total, 1e-9)
	})

	t.Run("endpoints synthesize from nearest matched value", func(t *testing.T) {
		matches := []spatialstore.GVIMatch{{Parameter: 0.5, Value: 2}}
		total := integrateDGVI(matches, 10)
		// two intervals [0,0.5] and [0.5,1], each avg(2,2)=2 -> (2-1)*10*1 = 10
		assert.InDelta(t, 10.0, total, 1e-9)
	})

	t.Run("unsorted input is sorted before integration", func(t *testing.T) {
		sorted := []spatialstore.GVIMatch{
			{Parameter: 0.2, Value: 1.2},
			{Parameter: 0.6, Value: 1.8},
		}
		reversed := []spatialstore.GVIMatch{sorted[1], sorted[0]}
		assert.Equal(t, integrateDGVI(sorted, 40), integrateDGVI(reversed, 40))
	})
}

func TestAverageGVI(t *testing.T) {
	t.Run("empty matches average to zero", func(t *testing.T) {
		assert.Equal(t, 0.0, averageGVI(nil))
	})

	t.Run("averages matched values", func(t *testing.T) {
		matches := []spatialstore.GVIMatch{{Value: 1}, {Value: 2}, {Value: 3}}
		assert.InDelta(t, 2.0, averageGVI(matches), 1e-9)
	})
}
