package planner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/spatialstore"
)

// NearestSiteCount is the "3 nearest" leg of the nearby-sites union.
const NearestSiteCount = 3

// MaxNearbySites bounds the nearby-sites union kept for a single
// endpoint, per spec §4.4.2.
const MaxNearbySites = 5

// MaxDirectBusCandidates bounds how many direct-bus itineraries survive
// into scoring, per spec §4.4.2.
const MaxDirectBusCandidates = 5

// directBusCandidates implements spec §4.4.2: nearby sites at both
// endpoints, one batch departures call per endpoint, journey-id
// correlation between an origin departure and a destination arrival of
// the same journey, feasibility checks, and walking sub-segments
// assembled via the Path Solver. It also returns the intermediate site
// and batch data so transferBusCandidates can reuse it without a
// second round of queries or feed calls.
func (p *Planner) directBusCandidates(ctx context.Context, req Request) ([]models.RoutePlan, []spatialstore.SiteDistance, []spatialstore.SiteDistance, map[int64][]models.Departure) {
	originSites, err := p.nearbySites(ctx, req.Origin)
	if err != nil {
		logDegraded("directbus:origin-sites", err)
		return nil, nil, nil, nil
	}

	destSites, err := p.nearbySites(ctx, req.Destination)
	if err != nil {
		logDegraded("directbus:dest-sites", err)
		return nil, originSites, nil, nil
	}

	forecast := int(p.cfg.BusSearchMaxDuration.Seconds())

	originBatch, err := p.feed.GetBatchDepartures(ctx, siteIDs(originSites), forecast)
	if err != nil {
		logDegraded("directbus:origin-batch", err)
		return nil, originSites, destSites, nil
	}

	destBatch, err := p.feed.GetBatchDepartures(ctx, siteIDs(destSites), forecast)
	if err != nil {
		logDegraded("directbus:dest-batch", err)
		return nil, originSites, destSites, originBatch
	}

	now := time.Now()
	var candidates []models.RoutePlan

	for _, oSite := range originSites {
		for _, oDep := range originBatch[oSite.Site.ID] {
			dDep, dSite, ok := matchJourney(oDep, destSites, destBatch)
			if !ok {
				continue
			}
			rp, err := p.assembleDirectBus(ctx, req, now, oSite, oDep, dSite, dDep)
			if err != nil {
				logDegraded("directbus:assemble", err)
				continue
			}
			if rp != nil {
				candidates = append(candidates, *rp)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return arrivalTime(candidates[i]) < arrivalTime(candidates[j])
	})
	if len(candidates) > MaxDirectBusCandidates {
		candidates = candidates[:MaxDirectBusCandidates]
	}

	return candidates, originSites, destSites, originBatch
}

func siteIDs(sites []spatialstore.SiteDistance) []int64 {
	ids := make([]int64, len(sites))
	for i, s := range sites {
		ids[i] = s.Site.ID
	}
	return ids
}

// matchJourney scans destSites' batch for a departure sharing oDep's
// journey id, line and direction, the correlation rule of spec §4.4.2.
func matchJourney(oDep models.Departure, destSites []spatialstore.SiteDistance, destBatch map[int64][]models.Departure) (models.Departure, spatialstore.SiteDistance, bool) {
	for _, dSite := range destSites {
		for _, dDep := range destBatch[dSite.Site.ID] {
			if dDep.JourneyID == oDep.JourneyID && dDep.LineID == oDep.LineID && dDep.DirectionCode == oDep.DirectionCode {
				return dDep, dSite, true
			}
		}
	}
	return models.Departure{}, spatialstore.SiteDistance{}, false
}

func (p *Planner) assembleDirectBus(ctx context.Context, req Request, now time.Time, oSite spatialstore.SiteDistance, oDep models.Departure, dSite spatialstore.SiteDistance, dDep models.Departure) (*models.RoutePlan, error) {
	rideDuration := dDep.Expected.Sub(oDep.Expected)
	if rideDuration <= 0 || rideDuration > p.cfg.BusSearchMaxDuration {
		return nil, nil
	}

	walkToStop, err := p.walkSegment(ctx, req.Origin, oSite.Site.Point, req.Preferences, req.Month)
	if err != nil {
		return nil, err
	}
	if walkToStop == nil {
		return nil, nil
	}
	walkFromStop, err := p.walkSegment(ctx, dSite.Site.Point, req.Destination, req.Preferences, req.Month)
	if err != nil {
		return nil, err
	}
	if walkFromStop == nil {
		return nil, nil
	}

	if now.Add(walkToStop.Duration).Add(p.cfg.TransferMargin).After(oDep.Expected) {
		return nil, nil // can't make it with the transfer margin
	}

	segments := []models.Segment{
		*walkToStop,
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
			Duration:          rideDuration,
			StartStopPointID:  oDep.StopPointID,
			EndStopPointID:    dDep.StopPointID,
			StartStopName:     oDep.StopPointName,
			EndStopName:       dDep.StopPointName,
			LineID:            oDep.LineID,
			LineDesignation:   oDep.LineDesignation,
			DirectionCode:     oDep.DirectionCode,
			ExpectedDeparture: oDep.Expected,
			ExpectedArrival:   dDep.Expected,
		},
		*walkFromStop,
	}

	total := time.Duration(0)
	for _, seg := range segments {
		total += seg.Duration
	}

	return &models.RoutePlan{
		RouteID:       fmt.Sprintf("direct-%s-%d-%d", oDep.JourneyID, oSite.Site.ID, dSite.Site.ID),
		RouteType:     models.RouteDirectBus,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Segments:      segments,
		TotalDuration: total,
		GVIDataMonth:  req.Month,
	}, nil
}
