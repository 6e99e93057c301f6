package spatialstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/models"
)

// SiteDistance pairs a bus site with the straight-line walking
// distance to the query point, the shape spec §4.4.2 calls
// "annotated with walkingDistance".
type SiteDistance struct {
	Site            models.BusSite
	WalkingDistance float64
}

// StopsWithinAndNearest implements spec §6.2 stopsWithinAndNearest:
// the union of sites within radiusMeters and the k nearest sites
// overall, grounded on the teacher's StopsNearby raw-haversine-SQL
// handler (internal/api/handlers.go).
func (s *Store) StopsWithinAndNearest(ctx context.Context, point orb.Point, radiusMeters float64, k int) ([]SiteDistance, error) {
	rows, err := s.pool.Query(ctx, `
		WITH candidates AS (
			SELECT id, name, ST_X(geom) AS lon, ST_Y(geom) AS lat,
			       ST_Distance(geom::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS dist
			FROM bus_site
		)
		SELECT id, name, lon, lat, dist
		FROM candidates
		WHERE dist <= $3
		UNION
		SELECT id, name, lon, lat, dist
		FROM (
			SELECT id, name, lon, lat, dist
			FROM candidates
			ORDER BY dist ASC
			LIMIT $4
		) nearest
		ORDER BY dist ASC
	`, point[0], point[1], radiusMeters, k)
	if err != nil {
		return nil, wrapQueryErr(err, "stops within and nearest")
	}
	defer rows.Close()

	var out []SiteDistance
	for rows.Next() {
		var sd SiteDistance
		var lon, lat float64
		if err := rows.Scan(&sd.Site.ID, &sd.Site.Name, &lon, &lat, &sd.WalkingDistance); err != nil {
			return nil, wrapQueryErr(err, "scan site distance")
		}
		sd.Site.Point = orb.Point{lon, lat}
		out = append(out, sd)
	}
	return out, rows.Err()
}

// StopPoint resolves a stop point id to its full record (spec §6.2
// stopPoint).
func (s *Store) StopPoint(ctx context.Context, id int64) (models.StopPoint, error) {
	var sp models.StopPoint
	var lon, lat float64
	err := s.pool.QueryRow(ctx, `
		SELECT id, site_id, name, direction_code, ST_X(geom), ST_Y(geom)
		FROM stop_point
		WHERE id = $1
	`, id).Scan(&sp.ID, &sp.SiteID, &sp.Name, &sp.DirectionCode, &lon, &lat)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.StopPoint{}, apperr.New(apperr.InvalidInput, "unknown stop point id")
		}
		return models.StopPoint{}, wrapQueryErr(err, "load stop point")
	}
	sp.Point = orb.Point{lon, lat}
	return sp, nil
}

// NextStop implements spec §6.2 nextStop: the functional successor of
// stopPointID on (lineID, directionCode), or ok=false if none exists.
func (s *Store) NextStop(ctx context.Context, lineID, directionCode string, stopPointID int64) (models.StopPoint, bool, error) {
	var nextID int64
	err := s.pool.QueryRow(ctx, `
		SELECT next_stop_point_id
		FROM stop_sequence_edge
		WHERE line_id = $1 AND direction_code = $2 AND stop_point_id = $3
		LIMIT 1
	`, lineID, directionCode, stopPointID).Scan(&nextID)
	if err == pgx.ErrNoRows {
		return models.StopPoint{}, false, nil
	}
	if err != nil {
		return models.StopPoint{}, false, wrapQueryErr(err, "next stop lookup")
	}

	sp, err := s.StopPoint(ctx, nextID)
	if err != nil {
		return models.StopPoint{}, false, err
	}
	return sp, true, nil
}

// ReachableSitesFrom implements spec §6.2 reachableSitesFrom: walks
// the Stop Sequence forward from stopPointID on (lineID, directionCode)
// up to maxDepth hops, returning which of targetSiteIDs is reached.
func (s *Store) ReachableSitesFrom(ctx context.Context, lineID, directionCode string, stopPointID int64, targetSiteIDs []int64, maxDepth int) ([]int64, error) {
	targets := make(map[int64]bool, len(targetSiteIDs))
	for _, id := range targetSiteIDs {
		targets[id] = true
	}

	reached := make(map[int64]bool)
	current := stopPointID

	for hop := 0; hop <= maxDepth; hop++ {
		sp, err := s.StopPoint(ctx, current)
		if err != nil {
			break
		}
		if targets[sp.SiteID] {
			reached[sp.SiteID] = true
		}

		next, ok, err := s.NextStop(ctx, lineID, directionCode, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		current = next.ID
	}

	out := make([]int64, 0, len(reached))
	for id := range reached {
		out = append(out, id)
	}
	return out, nil
}

// StopsAlong implements spec §6.2 stopsAlong: the ordered list of stop
// points from fromStopID to toStopID on (lineID, directionCode),
// bounded to maxDepth hops, for visualization (spec §4.4.5).
func (s *Store) StopsAlong(ctx context.Context, lineID, directionCode string, fromStopID, toStopID int64, maxDepth int) ([]models.StopPoint, error) {
	var stops []models.StopPoint
	current := fromStopID

	start, err := s.StopPoint(ctx, fromStopID)
	if err != nil {
		return nil, err
	}
	stops = append(stops, start)

	for hop := 0; hop < maxDepth; hop++ {
		if current == toStopID && hop > 0 {
			break
		}
		next, ok, err := s.NextStop(ctx, lineID, directionCode, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		stops = append(stops, next)
		current = next.ID
		if current == toStopID {
			break
		}
	}

	return stops, nil
}
