package spatialstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// parseLineStringWKT parses the subset of WKT that ST_AsText emits for
// a LineString geometry ("LINESTRING(lon lat,lon lat,...)"), avoiding a
// dependency on a generic WKT decoder for a single, fixed shape.
func parseLineStringWKT(wkt string) (orb.LineString, error) {
	wkt = strings.TrimSpace(wkt)
	upper := strings.ToUpper(wkt)
	if !strings.HasPrefix(upper, "LINESTRING") {
		return nil, fmt.Errorf("wkt: expected LINESTRING, got %q", wkt)
	}

	open := strings.IndexByte(wkt, '(')
	closeIdx := strings.LastIndexByte(wkt, ')')
	if open < 0 || closeIdx < 0 || closeIdx <= open {
		return nil, fmt.Errorf("wkt: malformed linestring %q", wkt)
	}

	body := wkt[open+1 : closeIdx]
	pairs := strings.Split(body, ",")
	line := make(orb.LineString, 0, len(pairs))

	for _, pair := range pairs {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) < 2 {
			return nil, fmt.Errorf("wkt: malformed coordinate %q", pair)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("wkt: parse longitude: %w", err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("wkt: parse latitude: %w", err)
		}
		line = append(line, orb.Point{lon, lat})
	}

	return line, nil
}
