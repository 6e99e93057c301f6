package planner

import (
	"context"
	"sort"

	"github.com/passbi/routecore/internal/models"
)

// MaxRankedPerCategory is spec §4.4.4's "top 2 per category" cutoff.
const MaxRankedPerCategory = 2

// scoreAndRank implements spec §4.4.4: independent per-category min-max
// normalization of time and DGVI, a convex penalty combining both under
// the request's preference vector, and a top-2 cutoff.
func (p *Planner) scoreAndRank(ctx context.Context, candidates []models.RoutePlan, req Request) []models.RoutePlan {
	if len(candidates) == 0 {
		return candidates
	}

	for i := range candidates {
		rp := &candidates[i]
		if rp.RouteType != models.RouteWalking {
			rp.TotalAcDGVI = p.busRouteDGVI(ctx, rp, req.Month)
		}
		rp.GVIDataMonth = req.Month
	}

	times := make([]float64, len(candidates))
	dgvis := make([]float64, len(candidates))
	for i, rp := range candidates {
		times[i] = rp.TotalDuration.Seconds()
		dgvis[i] = rp.TotalAcDGVI
	}

	minTime, maxTime := minMax(times)
	minDGVI, maxDGVI := minMax(dgvis)

	for i := range candidates {
		rp := &candidates[i]
		timeNorm := normalize(times[i], minTime, maxTime)
		dgviNorm := normalize(dgvis[i], minDGVI, maxDGVI)
		penalty := req.Preferences.WTime*timeNorm + req.Preferences.WGreen*(1-dgviNorm)
		rp.DurationScore = 1 - timeNorm
		rp.AcDGVIScore = dgviNorm
		rp.TotalScore = 1 - penalty
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].TotalScore > candidates[j].TotalScore
	})
	if len(candidates) > MaxRankedPerCategory {
		candidates = candidates[:MaxRankedPerCategory]
	}
	return candidates
}

// busRouteDGVI sums the waiting-time DGVI contribution of every
// bus_waiting segment (spec §4.3: bus-ride DGVI is visualization-only
// and never joins the route total).
func (p *Planner) busRouteDGVI(ctx context.Context, rp *models.RoutePlan, month string) float64 {
	var total float64
	for _, seg := range rp.Segments {
		switch seg.Kind {
		case models.SegmentBusWaiting:
			total += p.eval.WaitingDGVI(ctx, seg.StopPoint, month)
		}
	}
	return total
}

func normalize(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

func minMax(vals []float64) (float64, float64) {
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
