// Package pathsolver implements the Path Solver (PS) of spec §4.1:
// single-source-single-target shortest path on the road graph under a
// caller-supplied edge-cost function.
//
// The teacher's hand-rolled A* (internal/routing/astar.go, a
// container/heap priority queue with a haversine heuristic) is not
// reused as-is: once w_green > 0 the DGVI-weighted edge cost is no
// longer monotonically related to geographic distance, so a haversine
// heuristic is not admissible and A* could return a suboptimal path
// (see SPEC_FULL.md's Open Question resolution). Plain Dijkstra, run
// via the katalvlaran/lvlath graph-algorithms library, is always
// correct regardless of the weight vector.
package pathsolver

import (
	"context"
	"math"

	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/spatialstore"
)

// CostFunc evaluates the per-edge cost term of spec §4.1:
// `cost = w_time·length_normalized + w_green·(1 − dgvi_normalized)`.
// The caller closes over both the preference weights and the month's
// DGVI lookup (0 if undefined, per spec §3's "undefined greenness
// defaults to 0" invariant).
type CostFunc func(edge models.RoadEdge) float64

// PreferenceCost builds the CostFunc of spec §4.1 for a preference
// vector, looking up each edge's DGVI in dgviByEdge (0 if absent).
func PreferenceCost(prefs models.Preferences, dgviByEdge map[int64]float64) CostFunc {
	return func(edge models.RoadEdge) float64 {
		dgvi := dgviByEdge[edge.ID]
		return prefs.WTime*edge.LengthNormalized + prefs.WGreen*(1-dgvi)
	}
}

// PureLengthCost is spec §4.1's bus-ride geometry reconstruction
// variant: pure edge length, no DGVI weighting.
func PureLengthCost(edge models.RoadEdge) float64 {
	return edge.LengthMeters
}

// Result is the outcome of a successful shortestEdgePath call.
type Result struct {
	EdgeIDs             []int64
	TotalCostlessLength float64 // sum of edge.LengthMeters along the path
	Geometry            orb.LineString
}

// Solver runs shortest-path queries against a Spatial Store snapshot.
type Solver struct {
	store *spatialstore.Store
}

// New builds a Solver over store.
func New(store *spatialstore.Store) *Solver {
	return &Solver{store: store}
}

// NearestVertex delegates to the Spatial Store's nearest-vertex lookup
// (spec §4.1).
func (s *Solver) NearestVertex(ctx context.Context, point orb.Point) (int64, bool, error) {
	return s.store.NearestVertex(ctx, point)
}

// ShortestEdgePath implements spec §4.1's `shortestEdgePath` contract.
// A nil, nil return means NoPath (non-fatal; the caller decides, per
// spec §4.5). Equal source and target returns an empty-but-successful
// Result, per spec §8's boundary property.
func (s *Solver) ShortestEdgePath(ctx context.Context, fromVertex, toVertex int64, costFn CostFunc) (*Result, error) {
	if fromVertex == toVertex {
		return &Result{}, nil
	}

	snap, err := s.store.Graph(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := snap.Vertices[fromVertex]; !ok {
		return nil, nil
	}
	if _, ok := snap.Vertices[toVertex]; !ok {
		return nil, nil
	}

	edgeIDs, length, ok, err := runDijkstra(snap, fromVertex, toVertex, costFn)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "shortest path computation failed", err)
	}
	if !ok {
		return nil, nil
	}

	geometry, err := mergeGeometry(snap, edgeIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "merge path geometry failed", err)
	}

	return &Result{
		EdgeIDs:             edgeIDs,
		TotalCostlessLength: length,
		Geometry:            geometry,
	}, nil
}

// BusRideGeometry runs ShortestEdgePath with PureLengthCost, the
// visualization-only reconstruction of spec §4.1 whose DGVI is not
// accumulated into the route total (spec §4.3).
func (s *Solver) BusRideGeometry(ctx context.Context, fromVertex, toVertex int64) (*Result, error) {
	return s.ShortestEdgePath(ctx, fromVertex, toVertex, PureLengthCost)
}

// mergeGeometry stitches edge polylines in traversal order into one
// merged line, following the teacher's buildSteps geometry-
// concatenation idiom (internal/api/handlers.go).
func mergeGeometry(snap *spatialstore.GraphSnapshot, edgeIDs []int64) (orb.LineString, error) {
	var merged orb.LineString
	for _, id := range edgeIDs {
		edge, ok := snap.Edges[id]
		if !ok {
			continue
		}
		line := edge.Geometry
		if len(merged) > 0 && len(line) > 0 && pointsEqual(merged[len(merged)-1], line[0]) {
			line = line[1:]
		}
		merged = append(merged, line...)
	}
	return merged, nil
}

func pointsEqual(a, b orb.Point) bool {
	const eps = 1e-9
	return math.Abs(a[0]-b[0]) < eps && math.Abs(a[1]-b[1]) < eps
}
