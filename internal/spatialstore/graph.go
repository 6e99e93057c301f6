package spatialstore

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/models"
)

// GraphSnapshot is an immutable, in-memory copy of the road graph
// topology: vertices, edges, and an undirected adjacency index from
// vertex id to the edge ids touching it. DGVI values are not part of
// the snapshot — they are per-month and fetched separately so that the
// topology cache doesn't need invalidating when a month is rebuilt.
//
// Grounded on the teacher's internal/graph/memory.go InMemoryGraph: a
// process-wide, RWMutex-guarded singleton populated once from the
// database and reused across concurrent requests.
type GraphSnapshot struct {
	Vertices map[int64]models.RoadVertex
	Edges    map[int64]models.RoadEdge
	Adj      map[int64][]int64 // vertex id -> incident edge ids (both directions)
}

type graphCache struct {
	mu       sync.RWMutex
	snapshot *GraphSnapshot
}

func newGraphCache() *graphCache {
	return &graphCache{}
}

func (c *graphCache) get() *GraphSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *graphCache) set(s *GraphSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = s
}

// Graph returns the cached road graph topology, loading it from
// PostgreSQL on first use. Callers (the Path Solver) should call
// RefreshGraph periodically out of band if the static loader has run
// since process start; spec §3 treats roads/vertices as read-only to
// the core so no write path exists here.
func (s *Store) Graph(ctx context.Context) (*GraphSnapshot, error) {
	if snap := s.graph.get(); snap != nil {
		return snap, nil
	}
	return s.RefreshGraph(ctx)
}

// RefreshGraph reloads the topology cache from the database.
func (s *Store) RefreshGraph(ctx context.Context) (*GraphSnapshot, error) {
	snap, err := loadGraphFromDB(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	s.graph.set(snap)
	return snap, nil
}

func loadGraphFromDB(ctx context.Context, pool *pgxpool.Pool) (*GraphSnapshot, error) {
	snap := &GraphSnapshot{
		Vertices: make(map[int64]models.RoadVertex),
		Edges:    make(map[int64]models.RoadEdge),
		Adj:      make(map[int64][]int64),
	}

	vertexRows, err := pool.Query(ctx, `
		SELECT id, ST_X(geom) AS lon, ST_Y(geom) AS lat
		FROM road_vertex
	`)
	if err != nil {
		return nil, wrapQueryErr(err, "load road vertices")
	}
	defer vertexRows.Close()

	for vertexRows.Next() {
		var v models.RoadVertex
		var lon, lat float64
		if err := vertexRows.Scan(&v.ID, &lon, &lat); err != nil {
			return nil, wrapQueryErr(err, "scan road vertex")
		}
		v.Point = orb.Point{lon, lat}
		snap.Vertices[v.ID] = v
	}
	if err := vertexRows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate road vertices")
	}

	edgeRows, err := pool.Query(ctx, `
		SELECT id, from_vertex, to_vertex, length_m, length_normalized,
		       ST_AsText(geom) AS geom_wkt
		FROM road_edge
	`)
	if err != nil {
		return nil, wrapQueryErr(err, "load road edges")
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e models.RoadEdge
		var wkt string
		if err := edgeRows.Scan(&e.ID, &e.FromVertex, &e.ToVertex, &e.LengthMeters, &e.LengthNormalized, &wkt); err != nil {
			return nil, wrapQueryErr(err, "scan road edge")
		}
		line, err := parseLineStringWKT(wkt)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, fmt.Sprintf("parse geometry for edge %d", e.ID), err)
		}
		e.Geometry = line
		snap.Edges[e.ID] = e
		snap.Adj[e.FromVertex] = append(snap.Adj[e.FromVertex], e.ID)
		snap.Adj[e.ToVertex] = append(snap.Adj[e.ToVertex], e.ID)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, wrapQueryErr(err, "iterate road edges")
	}

	return snap, nil
}

// NearestVertex implements spec §4.1's nearest-vertex lookup: the
// graph vertex minimizing great-circle distance to point, ties broken
// by smaller vertex id. Resolved against the in-memory snapshot rather
// than a PostGIS KNN query, matching the teacher's
// InMemoryGraph.FindNearestNodes in-process iteration.
func (s *Store) NearestVertex(ctx context.Context, point orb.Point) (int64, bool, error) {
	snap, err := s.Graph(ctx)
	if err != nil {
		return 0, false, err
	}

	var (
		bestID   int64
		bestDist = math.MaxFloat64
		found    bool
	)

	for id, v := range snap.Vertices {
		d := HaversineMeters(point, v.Point)
		if d < bestDist || (d == bestDist && (!found || id < bestID)) {
			bestDist = d
			bestID = id
			found = true
		}
	}

	return bestID, found, nil
}

// EdgeGeometryAndLength returns the geometry and length of one edge.
func (s *Store) EdgeGeometryAndLength(ctx context.Context, edgeID int64) (orb.LineString, float64, error) {
	snap, err := s.Graph(ctx)
	if err != nil {
		return nil, 0, err
	}
	e, ok := snap.Edges[edgeID]
	if !ok {
		return nil, 0, apperr.New(apperr.InvalidInput, fmt.Sprintf("unknown edge id %d", edgeID))
	}
	return e.Geometry, e.LengthMeters, nil
}

// EdgesWithin returns road edge ids whose geometry lies within
// radiusMeters of point (spec §6.2 edgesWithin), used by waiting-DGVI
// (spec §4.3).
func (s *Store) EdgesWithin(ctx context.Context, point orb.Point, radiusMeters float64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id
		FROM road_edge
		WHERE ST_DWithin(
			geom::geography,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		)
	`, point[0], point[1], radiusMeters)
	if err != nil {
		return nil, wrapQueryErr(err, "edges within radius")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapQueryErr(err, "scan edge id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HaversineMeters returns the great-circle distance between a and b in
// meters, exported for callers outside this package that need a plain
// straight-line distance (e.g. bridging an intra-site transfer walk).
func HaversineMeters(a, b orb.Point) float64 {
	const earthRadius = 6371000.0
	lat1 := a[1] * math.Pi / 180
	lat2 := b[1] * math.Pi / 180
	dLat := (b[1] - a[1]) * math.Pi / 180
	dLon := (b[0] - a[0]) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius * c
}
