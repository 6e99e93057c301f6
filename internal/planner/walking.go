package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/pathsolver"
)

// walkingCandidates implements spec §4.4.1: PS is invoked once per
// strategy (user, ASAP, GROOT), each candidate is end-to-end
// DGVI-scored, duplicates are removed by edge-id fingerprint keeping
// the first two survivors in strategy-priority order.
func (p *Planner) walkingCandidates(ctx context.Context, req Request) []models.RoutePlan {
	strategies := walkingStrategies(req.Preferences)
	results := make([]*models.RoutePlan, len(strategies))

	var wg sync.WaitGroup
	for i, st := range strategies {
		wg.Add(1)
		go func(i int, st walkingStrategy) {
			defer wg.Done()
			rp, err := p.walkingCandidate(ctx, req, st)
			if err != nil {
				logDegraded("walking:"+st.Name, err)
				return
			}
			results[i] = rp
		}(i, st)
	}
	wg.Wait()

	var ordered []models.RoutePlan
	for _, rp := range results {
		if rp != nil {
			ordered = append(ordered, *rp)
		}
	}

	return dedupeWalking(ordered)
}

func (p *Planner) walkingCandidate(ctx context.Context, req Request, st walkingStrategy) (*models.RoutePlan, error) {
	fromVertex, ok, err := p.solver.NearestVertex(ctx, req.Origin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	toVertex, ok, err := p.solver.NearestVertex(ctx, req.Destination)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	dgviByEdge, err := p.store.DGVIForMonth(ctx, req.Month)
	if err != nil {
		return nil, err
	}

	result, err := p.solver.ShortestEdgePath(ctx, fromVertex, toVertex, pathsolver.PreferenceCost(st.Prefs, dgviByEdge))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil // NoPath: candidate dropped, per spec §4.5
	}

	duration := durationFromDistance(result.TotalCostlessLength, p.cfg.WalkingSpeedMPS)
	acDGVI := p.eval.WalkingDGVI(ctx, result.EdgeIDs, req.Month)

	rp := &models.RoutePlan{
		RouteID:       fmt.Sprintf("walk-%s-%d-%d", st.Name, fromVertex, toVertex),
		RouteType:     models.RouteWalking,
		Origin:        req.Origin,
		Destination:   req.Destination,
		TotalDuration: duration,
		TotalAcDGVI:   acDGVI,
		GVIDataMonth:  req.Month,
		Segments: []models.Segment{
			{
				Kind:           models.SegmentWalking,
				Duration:       duration,
				DistanceMeters: result.TotalCostlessLength,
				EdgeIDs:        result.EdgeIDs,
				Geometry:       result.Geometry,
			},
		},
	}
	return rp, nil
}

// dedupeWalking implements spec §4.4.1's deduplication: no two
// surviving routes may share the same sorted edge-id fingerprint; the
// first two survivors in strategy-priority order (the candidates slice
// is already ordered user -> ASAP -> GROOT) are kept.
func dedupeWalking(candidates []models.RoutePlan) []models.RoutePlan {
	seen := make(map[string]bool)
	var kept []models.RoutePlan

	for _, rp := range candidates {
		fp := rp.EdgeFingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		kept = append(kept, rp)
		if len(kept) == 2 {
			break
		}
	}

	return kept
}
