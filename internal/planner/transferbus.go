package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/spatialstore"
)

// MaxEmissionsPerAgent and MaxGlobalEmissions bound the one-transfer
// search of spec §4.4.3: each origin departure ("agent") may emit at
// most MaxEmissionsPerAgent itineraries, and the whole search stops
// emitting once MaxGlobalEmissions is reached.
const (
	MaxEmissionsPerAgent = 2
	MaxGlobalEmissions   = 20
)

// transferBusCandidates implements spec §4.4.3: a forward simulation
// along the Stop Sequence of each origin departure, probing for a
// second line that reaches a destination site within
// cfg.DestinationSearchDepth hops. Departure lookups at transfer
// candidate sites are memoized in a per-request map, never a
// process-wide cache, per spec §5/§9.
func (p *Planner) transferBusCandidates(ctx context.Context, req Request, originSites, destSites []spatialstore.SiteDistance, originBatch map[int64][]models.Departure) []models.RoutePlan {
	if len(destSites) == 0 {
		return nil
	}
	destSiteIDs := siteIDs(destSites)

	departuresBySite := make(map[int64][]models.Departure) // per-request cache
	forecast := int(p.cfg.BusSearchMaxDuration.Seconds())

	var candidates []models.RoutePlan
	globalEmitted := 0

	for _, oSite := range originSites {
		if globalEmitted >= MaxGlobalEmissions {
			break
		}
		for _, oDep := range originBatch[oSite.Site.ID] {
			if globalEmitted >= MaxGlobalEmissions {
				break
			}
			emitted := p.runTransferAgent(ctx, req, oSite, oDep, destSiteIDs, destSites, departuresBySite, forecast, MaxEmissionsPerAgent)
			for _, rp := range emitted {
				candidates = append(candidates, rp)
				globalEmitted++
				if globalEmitted >= MaxGlobalEmissions {
					break
				}
			}
		}
	}

	return candidates
}

// runTransferAgent walks forward from one origin departure along its
// Stop Sequence, testing each visited stop as a transfer point, and
// returns up to budget itineraries.
func (p *Planner) runTransferAgent(ctx context.Context, req Request, oSite spatialstore.SiteDistance, oDep models.Departure, destSiteIDs []int64, destSites []spatialstore.SiteDistance, departuresBySite map[int64][]models.Departure, forecast, budget int) []models.RoutePlan {
	walkToStop, err := p.walkSegment(ctx, req.Origin, oSite.Site.Point, req.Preferences, req.Month)
	if err != nil || walkToStop == nil {
		return nil
	}

	now := time.Now()
	if now.Add(walkToStop.Duration).Add(p.cfg.TransferMargin).After(oDep.Expected) {
		return nil
	}

	var emitted []models.RoutePlan
	current := oDep.StopPointID
	arrival := oDep.Expected
	lastDirection := oDep.DirectionCode

	for hop := 1; hop <= p.cfg.TransferSearchDepth && len(emitted) < budget; hop++ {
		next, ok, err := p.store.NextStop(ctx, oDep.LineID, oDep.DirectionCode, current)
		if err != nil || !ok {
			break
		}
		arrival = arrival.Add(p.cfg.TransferInterStopAvg)
		if next.DirectionCode == lastDirection && next.ID == current {
			continue // suppress a stalled forward-walk on an unchanged stop/direction
		}
		current = next.ID
		lastDirection = next.DirectionCode

		transferDeps := p.transferDeparturesAt(ctx, next.SiteID, forecast, departuresBySite)
		for _, d2 := range transferDeps {
			if d2.LineID == oDep.LineID {
				continue // not a transfer if it's the same line
			}

			// d2 boards at its own stop point, which need not be the
			// platform the forward walk landed on even though both
			// belong to the same site; resolve it so the transfer
			// junction is bridged rather than assumed coincident.
			d2Stop, err := p.store.StopPoint(ctx, d2.StopPointID)
			if err != nil {
				continue
			}
			intraWalkDistance := 0.0
			intraWalkDuration := time.Duration(0)
			if d2Stop.ID != next.ID {
				intraWalkDistance = spatialstore.HaversineMeters(next.Point, d2Stop.Point)
				intraWalkDuration = durationFromDistance(intraWalkDistance, p.cfg.WalkingSpeedMPS)
			}

			if !d2.Expected.After(arrival.Add(intraWalkDuration).Add(p.cfg.TransferMargin)) {
				continue
			}

			toStop, hops, found, err := p.estimateRideToSite(ctx, d2, destSiteIDs, p.cfg.DestinationSearchDepth)
			if err != nil || !found {
				continue
			}
			secondRideDuration := time.Duration(hops) * p.cfg.TransferInterStopAvg

			dSite, ok := siteByID(destSites, toStop.SiteID)
			if !ok {
				continue
			}

			rp, err := p.assembleTransfer(ctx, req, oSite, oDep, next, arrival, d2, d2Stop, intraWalkDistance, intraWalkDuration, toStop, secondRideDuration, dSite)
			if err != nil || rp == nil {
				continue
			}
			emitted = append(emitted, *rp)
			if len(emitted) >= budget {
				break
			}
		}
	}

	return emitted
}

// transferDeparturesAt memoizes a site's departures within the scope of
// a single planning request.
func (p *Planner) transferDeparturesAt(ctx context.Context, siteID int64, forecast int, cache map[int64][]models.Departure) []models.Departure {
	if deps, ok := cache[siteID]; ok {
		return deps
	}
	deps := p.feed.GetDepartures(ctx, siteID, forecast)
	cache[siteID] = deps
	return deps
}

// estimateRideToSite resolves the real second-ride duration by
// forward-walking the Stop Sequence of d2 until a stop belonging to one
// of targetSiteIDs is reached, rather than assuming a fixed duration.
func (p *Planner) estimateRideToSite(ctx context.Context, d2 models.Departure, targetSiteIDs []int64, maxDepth int) (models.StopPoint, int, bool, error) {
	targets := make(map[int64]bool, len(targetSiteIDs))
	for _, id := range targetSiteIDs {
		targets[id] = true
	}

	current, err := p.store.StopPoint(ctx, d2.StopPointID)
	if err != nil {
		return models.StopPoint{}, 0, false, err
	}
	if targets[current.SiteID] {
		return current, 0, true, nil
	}

	for hop := 1; hop <= maxDepth; hop++ {
		next, ok, err := p.store.NextStop(ctx, d2.LineID, d2.DirectionCode, current.ID)
		if err != nil {
			return models.StopPoint{}, 0, false, err
		}
		if !ok {
			return models.StopPoint{}, 0, false, nil
		}
		current = next
		if targets[current.SiteID] {
			return current, hop, true, nil
		}
	}

	return models.StopPoint{}, 0, false, nil
}

func siteByID(sites []spatialstore.SiteDistance, id int64) (spatialstore.SiteDistance, bool) {
	for _, s := range sites {
		if s.Site.ID == id {
			return s, true
		}
	}
	return spatialstore.SiteDistance{}, false
}

// assembleTransfer resolves both end walks and hands off to
// buildTransferPlan for the pure segment-assembly logic.
func (p *Planner) assembleTransfer(ctx context.Context, req Request, oSite spatialstore.SiteDistance, oDep models.Departure, transferStop models.StopPoint, transferArrival time.Time, d2 models.Departure, d2Stop models.StopPoint, intraWalkDistance float64, intraWalkDuration time.Duration, arrivalStop models.StopPoint, secondRideDuration time.Duration, dSite spatialstore.SiteDistance) (*models.RoutePlan, error) {
	walkToStop, err := p.walkSegment(ctx, req.Origin, oSite.Site.Point, req.Preferences, req.Month)
	if err != nil || walkToStop == nil {
		return nil, err
	}
	walkFromStop, err := p.walkSegment(ctx, dSite.Site.Point, req.Destination, req.Preferences, req.Month)
	if err != nil || walkFromStop == nil {
		return nil, err
	}

	rp := buildTransferPlan(req, time.Now(), oSite, oDep, transferStop, transferArrival, d2, d2Stop, intraWalkDistance, intraWalkDuration, arrivalStop, secondRideDuration, dSite, *walkToStop, *walkFromStop, p.cfg.TransferMargin)
	return rp, nil
}

// buildTransferPlan assembles the itinerary from already-resolved
// walking segments. The forward walk along the Stop Sequence lands on
// transferStop, but d2 boards at d2Stop, which may be a different
// platform of the same site; when the two differ, a bridging walking
// segment carrying IntraSiteTransfer is inserted between the arrival
// and the second wait, so the segment sequence never implies
// teleporting between platforms (spec §3's segment-sequence
// invariant).
func buildTransferPlan(req Request, now time.Time, oSite spatialstore.SiteDistance, oDep models.Departure, transferStop models.StopPoint, transferArrival time.Time, d2 models.Departure, d2Stop models.StopPoint, intraWalkDistance float64, intraWalkDuration time.Duration, arrivalStop models.StopPoint, secondRideDuration time.Duration, dSite spatialstore.SiteDistance, walkToStop, walkFromStop models.Segment, transferMargin time.Duration) *models.RoutePlan {
	secondArrival := d2.Expected.Add(secondRideDuration)
	bridged := d2Stop.ID != transferStop.ID
	secondWaitStart := transferArrival.Add(intraWalkDuration)

	segments := []models.Segment{
		walkToStop,
		{
			Kind:            models.SegmentBusWaiting,
			Duration:        oDep.Expected.Sub(now.Add(walkToStop.Duration)),
			StopPointID:     oDep.StopPointID,
			SiteID:          oSite.Site.ID,
			StopPoint:       oSite.Site.Point,
			LineID:          oDep.LineID,
			LineDesignation: oDep.LineDesignation,
			DirectionCode:   oDep.DirectionCode,
			ExpectedAt:      oDep.Expected,
		},
		{
			Kind:              models.SegmentBusRide,
			Duration:          transferArrival.Sub(oDep.Expected),
			StartStopPointID:  oDep.StopPointID,
			EndStopPointID:    transferStop.ID,
			StartStopName:     oDep.StopPointName,
			EndStopName:       transferStop.Name,
			LineID:            oDep.LineID,
			LineDesignation:   oDep.LineDesignation,
			DirectionCode:     oDep.DirectionCode,
			ExpectedDeparture: oDep.Expected,
			ExpectedArrival:   transferArrival,
		},
	}

	if bridged {
		segments = append(segments, models.Segment{
			Kind:           models.SegmentWalking,
			Duration:       intraWalkDuration,
			DistanceMeters: intraWalkDistance,
			Geometry:       orb.LineString{transferStop.Point, d2Stop.Point},
			IntraSiteTransfer: &models.IntraSiteTransfer{
				FromStopPointID: transferStop.ID,
				ToStopPointID:   d2Stop.ID,
				SiteID:          d2Stop.SiteID,
			},
		})
	}

	segments = append(segments,
		models.Segment{
			Kind:            models.SegmentBusWaiting,
			Duration:        d2.Expected.Sub(secondWaitStart),
			StopPointID:     d2Stop.ID,
			SiteID:          d2Stop.SiteID,
			StopPoint:       d2Stop.Point,
			LineID:          d2.LineID,
			LineDesignation: d2.LineDesignation,
			DirectionCode:   d2.DirectionCode,
			ExpectedAt:      d2.Expected,
			Transfer: &models.TransferInfo{
				WaitingTime:    d2.Expected.Sub(secondWaitStart),
				FromLine:       oDep.LineDesignation,
				ToLine:         d2.LineDesignation,
				TransferMargin: transferMargin,
				IntraSiteWalk:  bridged,
			},
		},
		models.Segment{
			Kind:              models.SegmentBusRide,
			Duration:          secondRideDuration,
			StartStopPointID:  d2.StopPointID,
			EndStopPointID:    arrivalStop.ID,
			StartStopName:     d2.StopPointName,
			EndStopName:       arrivalStop.Name,
			LineID:            d2.LineID,
			LineDesignation:   d2.LineDesignation,
			DirectionCode:     d2.DirectionCode,
			ExpectedDeparture: d2.Expected,
			ExpectedArrival:   secondArrival,
		},
		walkFromStop,
	)

	total := time.Duration(0)
	for _, seg := range segments {
		total += seg.Duration
	}

	return &models.RoutePlan{
		RouteID:       fmt.Sprintf("transfer-%s-%s-%d-%d", oDep.JourneyID, d2.JourneyID, oSite.Site.ID, dSite.Site.ID),
		RouteType:     models.RouteTransferBus,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Segments:      segments,
		TotalDuration: total,
		GVIDataMonth:  req.Month,
	}
}
