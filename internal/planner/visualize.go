package planner

import (
	"context"

	"github.com/passbi/routecore/internal/models"
)

// enrichVisualization implements spec §4.4.5: for every bus_ride
// segment of a surviving route, reconstruct the ride's own geometry
// (pure length cost, not DGVI-weighted) and enumerate the stops along
// it, bounded to cfg.StopsAlongDepth.
func (p *Planner) enrichVisualization(ctx context.Context, routes []models.RoutePlan) {
	for i := range routes {
		for j := range routes[i].Segments {
			seg := &routes[i].Segments[j]
			if seg.Kind != models.SegmentBusRide {
				continue
			}
			p.enrichRideSegment(ctx, seg)
		}
	}
}

func (p *Planner) enrichRideSegment(ctx context.Context, seg *models.Segment) {
	startStop, err := p.store.StopPoint(ctx, seg.StartStopPointID)
	if err != nil {
		logDegraded("visualize:start-stop", err)
		return
	}
	endStop, err := p.store.StopPoint(ctx, seg.EndStopPointID)
	if err != nil {
		logDegraded("visualize:end-stop", err)
		return
	}

	fromVertex, ok, err := p.solver.NearestVertex(ctx, startStop.Point)
	if err != nil || !ok {
		logDegraded("visualize:from-vertex", err)
		return
	}
	toVertex, ok, err := p.solver.NearestVertex(ctx, endStop.Point)
	if err != nil || !ok {
		logDegraded("visualize:to-vertex", err)
		return
	}

	result, err := p.solver.BusRideGeometry(ctx, fromVertex, toVertex)
	if err != nil {
		logDegraded("visualize:ride-geometry", err)
		return
	}
	if result != nil {
		seg.RideEdgeIDs = result.EdgeIDs
		seg.RideGeometry = result.Geometry
	}

	stops, err := p.store.StopsAlong(ctx, seg.LineID, seg.DirectionCode, seg.StartStopPointID, seg.EndStopPointID, p.cfg.StopsAlongDepth)
	if err != nil {
		logDegraded("visualize:stops-along", err)
		return
	}
	seg.IntermediateStops = stops
}
