package httpapi

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/routecore/internal/apperr"
)

func TestParseCoordinates(t *testing.T) {
	t.Run("valid lat,lon parses to an orb.Point in lon,lat order", func(t *testing.T) {
		p, err := parseCoordinates("59.33, 18.06")
		require.NoError(t, err)
		assert.Equal(t, orb.Point{18.06, 59.33}, p)
	})

	t.Run("missing comma is invalid input", func(t *testing.T) {
		_, err := parseCoordinates("59.33")
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})

	t.Run("non-numeric latitude is invalid input", func(t *testing.T) {
		_, err := parseCoordinates("abc,18.06")
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})

	t.Run("out of range coordinates are rejected", func(t *testing.T) {
		_, err := parseCoordinates("95,18.06")
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})
}

func TestParseMonth(t *testing.T) {
	assert.NoError(t, parseMonth("2026-03"))

	t.Run("wrong length is rejected", func(t *testing.T) {
		err := parseMonth("2026-3")
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})

	t.Run("missing dash is rejected", func(t *testing.T) {
		err := parseMonth("2026_03")
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})
}
