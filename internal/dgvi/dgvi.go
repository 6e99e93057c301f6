// Package dgvi implements the DGVI Evaluator (DE) of spec §4.3: the
// distance-adjusted green-view integral over road edges, the waiting-
// stop accumulation, and the per-month rebuild batch job (§4.3.1).
//
// Grounded on the teacher's PostGIS-heavy query style
// (internal/graph/builder.go, internal/routing/vehicle_position.go):
// the heavy lifting (point matching, buffering) is pushed into SQL via
// internal/spatialstore, and this package does only the integral math.
package dgvi

import (
	"context"
	"log"
	"sort"

	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/spatialstore"
)

// Evaluator computes DGVI values against a Spatial Store.
type Evaluator struct {
	store *spatialstore.Store
}

// New builds an Evaluator over store.
func New(store *spatialstore.Store) *Evaluator {
	return &Evaluator{store: store}
}

// WaitingRadiusMeters is the fixed radius spec §4.3 uses for edges
// contributing to a waiting stop's DGVI.
const WaitingRadiusMeters = 200.0

// EdgeDGVI computes the per-edge DGVI for (edgeID, month) per the
// integral law of spec §4.3: matched GVI points are sorted by their
// projected parameter, endpoints are synthesized from the nearest
// matched value, and the DGVI is the sum over consecutive intervals of
// (Δp · L · (avg(v_i, v_{i+1}) − 1)). An edge with no matched points
// has a DGVI of 0.
func (e *Evaluator) EdgeDGVI(ctx context.Context, edgeID int64, month string) (float64, error) {
	_, length, err := e.store.EdgeGeometryAndLength(ctx, edgeID)
	if err != nil {
		return 0, err
	}

	matches, err := e.store.MatchedGVIPointsForEdge(ctx, edgeID, month)
	if err != nil {
		return 0, err
	}

	return integrateDGVI(matches, length), nil
}

// integrateDGVI is the pure math core of spec §4.3, isolated from I/O
// so it can be exercised directly by tests on synthetic point sets.
func integrateDGVI(matches []spatialstore.GVIMatch, length float64) float64 {
	if length <= 0 || len(matches) == 0 {
		return 0
	}

	sorted := append([]spatialstore.GVIMatch(nil), matches...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Parameter < sorted[j].Parameter })

	nearestValue := func(toStart bool) float64 {
		if len(sorted) == 0 {
			return 0
		}
		if toStart {
			return sorted[0].Value
		}
		return sorted[len(sorted)-1].Value
	}

	points := make([]spatialstore.GVIMatch, 0, len(sorted)+2)
	if len(sorted) == 0 || sorted[0].Parameter > 0 {
		points = append(points, spatialstore.GVIMatch{Parameter: 0, Value: nearestValue(true)})
	}
	points = append(points, sorted...)
	if len(sorted) == 0 || sorted[len(sorted)-1].Parameter < 1 {
		points = append(points, spatialstore.GVIMatch{Parameter: 1, Value: nearestValue(false)})
	}

	var total float64
	for i := 0; i+1 < len(points); i++ {
		p0, p1 := points[i], points[i+1]
		dp := p1.Parameter - p0.Parameter
		if dp <= 0 {
			continue
		}
		avg := (p0.Value + p1.Value) / 2
		total += dp * length * (avg - 1)
	}

	return total
}

// WalkingDGVI sums per-edge DGVI over an ordered edge list (spec §4.3
// "Walking DGVI"). The list, not the set, is summed: duplicate edge
// ids (e.g. a there-and-back walking leg) are counted once per
// occurrence. Per-edge failures degrade that edge's contribution to 0
// and are logged, matching spec §4.5's "DGVI computation error" rule.
func (e *Evaluator) WalkingDGVI(ctx context.Context, edgeIDs []int64, month string) float64 {
	var total float64
	for _, id := range edgeIDs {
		v, err := e.EdgeDGVI(ctx, id, month)
		if err != nil {
			log.Printf("dgvi: edge %d contributes 0 (%v)", id, err)
			continue
		}
		total += v
	}
	return total
}

// WaitingDGVI sums the contribution of every road edge within
// WaitingRadiusMeters of stopPoint (spec §4.3 "Waiting DGVI"): each
// edge contributes L·avg_gvi − L, where avg_gvi is the mean of its
// matched GVI points for month (0 if none matched).
func (e *Evaluator) WaitingDGVI(ctx context.Context, stopPoint orb.Point, month string) float64 {
	edgeIDs, err := e.store.EdgesWithin(ctx, stopPoint, WaitingRadiusMeters)
	if err != nil {
		log.Printf("dgvi: waiting dgvi lookup failed, contributing 0 (%v)", err)
		return 0
	}

	var total float64
	for _, id := range edgeIDs {
		_, length, err := e.store.EdgeGeometryAndLength(ctx, id)
		if err != nil {
			log.Printf("dgvi: edge %d geometry unavailable, skipped (%v)", id, err)
			continue
		}

		matches, err := e.store.MatchedGVIPointsForEdge(ctx, id, month)
		if err != nil {
			log.Printf("dgvi: edge %d gvi match failed, skipped (%v)", id, err)
			continue
		}

		avg := averageGVI(matches)
		total += length*avg - length
	}

	return total
}

func averageGVI(matches []spatialstore.GVIMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Value
	}
	return sum / float64(len(matches))
}
