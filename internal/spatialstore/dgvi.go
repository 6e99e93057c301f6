package spatialstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/models"
)

// GVIMatch is one GVI point matched and projected onto an edge's
// geometry, the (parameter, value) pair of spec §6.2
// matchedGVIPointsForEdge.
type GVIMatch struct {
	Parameter float64 // position along the line in [0,1]
	Value     float64
}

// MatchedGVIPointsForEdge implements spec §6.2/§4.3: every GVI point of
// month within a 1-meter buffer of edgeID's geometry, projected onto
// the line via ST_LineLocatePoint.
func (s *Store) MatchedGVIPointsForEdge(ctx context.Context, edgeID int64, month string) ([]GVIMatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ST_LineLocatePoint(e.geom, g.geom) AS param, g.value
		FROM road_edge e
		JOIN gvi_point g
			ON g.month = $2
			AND ST_DWithin(e.geom::geography, g.geom::geography, 1)
		WHERE e.id = $1
	`, edgeID, month)
	if err != nil {
		return nil, wrapQueryErr(err, "matched gvi points for edge")
	}
	defer rows.Close()

	var matches []GVIMatch
	for rows.Next() {
		var m GVIMatch
		if err := rows.Scan(&m.Parameter, &m.Value); err != nil {
			return nil, wrapQueryErr(err, "scan gvi match")
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// AllRoadIDs returns every road edge id, used by the §4.3.1 rebuild
// batch job to chunk work (~100 ids per batch).
func (s *Store) AllRoadIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM road_edge ORDER BY id`)
	if err != nil {
		return nil, wrapQueryErr(err, "load road ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapQueryErr(err, "scan road id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertRoadDGVI writes the raw (not yet normalized) DGVI for a batch
// of (road, month) rows, part of the §4.3.1 rebuild.
func (s *Store) UpsertRoadDGVI(ctx context.Context, rows []models.RoadDGVI) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO road_dgvi (road_id, month, dgvi_raw, dgvi_normalized)
			VALUES ($1, $2, $3, 0)
			ON CONFLICT (road_id, month)
			DO UPDATE SET dgvi_raw = EXCLUDED.dgvi_raw
		`, row.RoadID, row.Month, row.Raw)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return wrapQueryErr(err, "upsert road dgvi")
		}
	}
	return nil
}

// NormalizeMonth recomputes the min-max normalization across every
// road_dgvi row of month, per §4.3.1 ("if min=max, all normalized
// values are 0").
func (s *Store) NormalizeMonth(ctx context.Context, month string) error {
	var min, max float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(MIN(dgvi_raw), 0), COALESCE(MAX(dgvi_raw), 0)
		FROM road_dgvi
		WHERE month = $1
	`, month).Scan(&min, &max)
	if err != nil {
		return wrapQueryErr(err, "load dgvi min/max")
	}

	if min == max {
		_, err := s.pool.Exec(ctx, `
			UPDATE road_dgvi SET dgvi_normalized = 0 WHERE month = $1
		`, month)
		return wrapQueryErr(err, "zero-normalize dgvi")
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE road_dgvi
		SET dgvi_normalized = (dgvi_raw - $2) / ($3 - $2)
		WHERE month = $1
	`, month, min, max)
	return wrapQueryErr(err, "normalize dgvi")
}

// DGVIForMonth loads the normalized DGVI of every road present for
// month, as a lookup the Path Solver's cost function consults per edge
// (spec §4.1's COALESCE(dgvi_normalized_for_month, 0)).
func (s *Store) DGVIForMonth(ctx context.Context, month string) (map[int64]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT road_id, dgvi_normalized FROM road_dgvi WHERE month = $1
	`, month)
	if err != nil {
		return nil, wrapQueryErr(err, "load dgvi for month")
	}
	defer rows.Close()

	out := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var v float64
		if err := rows.Scan(&id, &v); err != nil {
			return nil, wrapQueryErr(err, "scan dgvi row")
		}
		out[id] = v
	}
	return out, rows.Err()
}

// AvailableMonths lists every month with DGVI data (spec §6.1
// available-months).
func (s *Store) AvailableMonths(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT month FROM road_dgvi ORDER BY month DESC
	`)
	if err != nil {
		return nil, wrapQueryErr(err, "load available months")
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, wrapQueryErr(err, "scan month")
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// DGVIStats returns the count, min, max and average normalized DGVI
// for month (spec §6.1 dgvi-stats/{month}).
type DGVIStats struct {
	Month     string
	Count     int
	MinNorm   float64
	MaxNorm   float64
	AvgNorm   float64
}

func (s *Store) DGVIStats(ctx context.Context, month string) (DGVIStats, error) {
	stats := DGVIStats{Month: month}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(MIN(dgvi_normalized), 0),
		       COALESCE(MAX(dgvi_normalized), 0), COALESCE(AVG(dgvi_normalized), 0)
		FROM road_dgvi
		WHERE month = $1
	`, month).Scan(&stats.Count, &stats.MinNorm, &stats.MaxNorm, &stats.AvgNorm)
	if err != nil {
		return DGVIStats{}, wrapQueryErr(err, "load dgvi stats")
	}
	if stats.Count == 0 {
		return DGVIStats{}, apperr.New(apperr.NoDataForMonth, "no dgvi rows for month "+month)
	}
	return stats, nil
}

// GVIPoints returns up to limit GVI points for month (spec §6.1
// gvi-points/{month}, bounded to ≤ 20000 points).
func (s *Store) GVIPoints(ctx context.Context, month string, limit int) ([]models.GVIPoint, error) {
	if limit > 20000 {
		limit = 20000
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, ST_X(geom), ST_Y(geom), value
		FROM gvi_point
		WHERE month = $1
		LIMIT $2
	`, month, limit)
	if err != nil {
		return nil, wrapQueryErr(err, "load gvi points")
	}
	defer rows.Close()

	var points []models.GVIPoint
	for rows.Next() {
		var p models.GVIPoint
		var lon, lat float64
		p.Month = month
		if err := rows.Scan(&p.ID, &lon, &lat, &p.Value); err != nil {
			return nil, wrapQueryErr(err, "scan gvi point")
		}
		p.Point = orb.Point{lon, lat}
		points = append(points, p)
	}
	return points, rows.Err()
}

// InsertGVIPoints persists up to 20 GVI points returned by the
// out-of-scope greenness service (spec §6.1 add-gvi-points).
func (s *Store) InsertGVIPoints(ctx context.Context, points []models.GVIPoint) error {
	if len(points) > 20 {
		return apperr.New(apperr.InvalidInput, "add-gvi-points accepts at most 20 points per call")
	}

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(`
			INSERT INTO gvi_point (geom, month, value)
			VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326), $3, $4)
		`, p.Point[0], p.Point[1], p.Month, p.Value)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return wrapQueryErr(err, "insert gvi point")
		}
	}
	return nil
}
