package planner

import (
	"context"
	"time"

	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/pathsolver"
	"github.com/passbi/routecore/internal/spatialstore"
)

// walkSegment builds one walking Segment between two points under the
// given preference vector and month, reusing the Path Solver exactly
// as the walking-candidate search does. A nil, nil return means no
// path exists between the points (the caller drops the enclosing
// candidate).
func (p *Planner) walkSegment(ctx context.Context, from, to orb.Point, prefs models.Preferences, month string) (*models.Segment, error) {
	fromVertex, ok, err := p.solver.NearestVertex(ctx, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	toVertex, ok, err := p.solver.NearestVertex(ctx, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	dgviByEdge, err := p.store.DGVIForMonth(ctx, month)
	if err != nil {
		dgviByEdge = nil // undefined greenness defaults to 0 per spec §3
	}

	result, err := p.solver.ShortestEdgePath(ctx, fromVertex, toVertex, pathsolver.PreferenceCost(prefs, dgviByEdge))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	duration := durationFromDistance(result.TotalCostlessLength, p.cfg.WalkingSpeedMPS)
	return &models.Segment{
		Kind:           models.SegmentWalking,
		Duration:       duration,
		DistanceMeters: result.TotalCostlessLength,
		EdgeIDs:        result.EdgeIDs,
		Geometry:       result.Geometry,
	}, nil
}

// durationFromDistance converts a walked distance to a duration at the
// configured walking speed (spec §4.4.1).
func durationFromDistance(meters, speedMPS float64) time.Duration {
	if speedMPS <= 0 {
		return 0
	}
	return time.Duration(meters/speedMPS) * time.Second
}

// nearbySites implements spec §4.4.2's nearby-sites union: sites
// within the configured max walking distance plus the NearestSiteCount
// nearest sites overall, capped at MaxNearbySites and annotated with
// walking distance. The radius is walking_speed * max_walking_time
// (spec §6.4), not a fixed constant, so raising either tunable widens
// bus-candidate discovery accordingly.
func (p *Planner) nearbySites(ctx context.Context, point orb.Point) ([]spatialstore.SiteDistance, error) {
	radius := p.cfg.WalkingSpeedMPS * p.cfg.MaxWalkingTime.Seconds()
	sites, err := p.store.StopsWithinAndNearest(ctx, point, radius, NearestSiteCount)
	if err != nil {
		return nil, err
	}
	if len(sites) > MaxNearbySites {
		sites = sites[:MaxNearbySites]
	}
	return sites, nil
}
