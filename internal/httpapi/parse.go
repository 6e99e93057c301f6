package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
)

// parseCoordinates parses a "lat,lon" query parameter, grounded on the
// teacher's parseCoordinates (internal/api/handlers.go) but returning
// an orb.Point (lon, lat order, matching every spatialstore query).
func parseCoordinates(coordStr string) (orb.Point, error) {
	parts := strings.Split(coordStr, ",")
	if len(parts) != 2 {
		return orb.Point{}, apperr.New(apperr.InvalidInput, "expected format: lat,lon")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, apperr.Wrap(apperr.InvalidInput, "invalid latitude", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, apperr.Wrap(apperr.InvalidInput, "invalid longitude", err)
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return orb.Point{}, apperr.New(apperr.InvalidInput, "coordinates out of range")
	}

	return orb.Point{lon, lat}, nil
}

func parseMonth(month string) error {
	if len(month) != 7 || month[4] != '-' {
		return apperr.New(apperr.InvalidInput, fmt.Sprintf("invalid month %q, expected YYYY-MM", month))
	}
	return nil
}
