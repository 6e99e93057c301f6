package pathsolver

import (
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"

	"github.com/passbi/routecore/internal/spatialstore"
)

// costScale converts the solver's float edge costs into the int64
// weights lvlath's Dijkstra requires, preserving enough precision for
// the [0,1]-ish cost range of spec §4.1's convex combination.
const costScale = 1_000_000

// runDijkstra builds an undirected, weighted lvlath graph from snap
// (spec §4.1: "must respect an undirected interpretation of the graph
// for walking") and returns the edge-id path, its costless length
// (sum of edge.LengthMeters), and whether toVertex was reached.
func runDijkstra(snap *spatialstore.GraphSnapshot, fromVertex, toVertex int64, costFn CostFunc) ([]int64, float64, bool, error) {
	g := core.NewGraph(core.WithWeighted(), core.WithDirected(false), core.WithMultiEdges())

	for id := range snap.Vertices {
		if err := g.AddVertex(vertexKey(id)); err != nil {
			return nil, 0, false, fmt.Errorf("add vertex %d: %w", id, err)
		}
	}

	// candidatesByPair indexes, for each unordered vertex pair, every
	// road edge connecting them so the chosen lvlath hop can be mapped
	// back to a concrete edge id (spec's edge-id-sequence contract,
	// which lvlath's own Edge.ID does not carry).
	candidatesByPair := make(map[[2]int64][]int64) // key -> edge ids

	for edgeID, edge := range snap.Edges {
		cost := costFn(edge)
		weight := int64(cost * costScale)
		if weight < 0 {
			weight = 0
		}

		if _, err := g.AddEdge(vertexKey(edge.FromVertex), vertexKey(edge.ToVertex), weight); err != nil {
			return nil, 0, false, fmt.Errorf("add edge %d: %w", edgeID, err)
		}

		key := pairKey(edge.FromVertex, edge.ToVertex)
		candidatesByPair[key] = append(candidatesByPair[key], edgeID)
	}

	dist, prev, err := dijkstra.Dijkstra(g, dijkstra.Source(vertexKey(fromVertex)), dijkstra.WithReturnPath())
	if err != nil {
		return nil, 0, false, err
	}

	toKey := vertexKey(toVertex)
	if _, reached := dist[toKey]; !reached {
		return nil, 0, false, nil
	}
	if dist[toKey] == math.MaxInt64 { // lvlath's unreachable sentinel
		return nil, 0, false, nil
	}

	// Walk the predecessor chain back to the source.
	var vertexPath []int64
	cur := toKey
	seen := make(map[string]bool)
	for {
		id, err := strconv.ParseInt(cur, 10, 64)
		if err != nil {
			return nil, 0, false, fmt.Errorf("parse vertex key %q: %w", cur, err)
		}
		vertexPath = append([]int64{id}, vertexPath...)

		if cur == vertexKey(fromVertex) {
			break
		}
		if seen[cur] {
			return nil, 0, false, fmt.Errorf("cycle detected reconstructing path to %s", cur)
		}
		seen[cur] = true

		next, ok := prev[cur]
		if !ok || next == "" {
			return nil, 0, false, nil
		}
		cur = next
	}

	edgeIDs := make([]int64, 0, len(vertexPath)-1)
	var totalLength float64
	for i := 0; i+1 < len(vertexPath); i++ {
		u, v := vertexPath[i], vertexPath[i+1]
		id, ok := bestEdgeBetween(snap, candidatesByPair, costFn, u, v)
		if !ok {
			return nil, 0, false, fmt.Errorf("no road edge between vertices %d and %d", u, v)
		}
		edgeIDs = append(edgeIDs, id)
		totalLength += snap.Edges[id].LengthMeters
	}

	return edgeIDs, totalLength, true, nil
}

// bestEdgeBetween picks the road edge connecting u and v whose costFn
// value is lowest among parallel candidates. Dijkstra's relaxation
// only ever prefers the minimum-weight edge for a given pair, so the
// edge that actually produced the traversal's distance is the one with
// minimum cost, not necessarily the one with minimum length (those
// diverge once w_green > 0).
func bestEdgeBetween(snap *spatialstore.GraphSnapshot, candidates map[[2]int64][]int64, costFn CostFunc, u, v int64) (int64, bool) {
	ids, ok := candidates[pairKey(u, v)]
	if !ok || len(ids) == 0 {
		return 0, false
	}

	best := ids[0]
	bestCost := costFn(snap.Edges[best])
	for _, id := range ids[1:] {
		if c := costFn(snap.Edges[id]); c < bestCost {
			best, bestCost = id, c
		}
	}
	return best, true
}

func vertexKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}
