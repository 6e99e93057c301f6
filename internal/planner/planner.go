// Package planner implements the Planner (PL) of spec §4.4: the
// top-level orchestrator that generates walking and transit
// candidates, scores and ranks them, and deduplicates the result.
//
// Control flow follows spec §2: walking candidates run under three
// preference strategies in parallel (grounded on the teacher's
// internal/api/handlers.go RouteSearch, which fans out its own
// strategy variants across goroutines and a result channel); the
// transit branch runs TFC batch departures, then correlates against
// the Spatial Store and scores with the DGVI Evaluator.
package planner

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/config"
	"github.com/passbi/routecore/internal/dgvi"
	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/pathsolver"
	"github.com/passbi/routecore/internal/spatialstore"
	"github.com/passbi/routecore/internal/transitfeed"
)

// Planner orchestrates SS, PS, DE and TFC to answer plan-routes
// requests.
type Planner struct {
	store  *spatialstore.Store
	solver *pathsolver.Solver
	eval   *dgvi.Evaluator
	feed   *transitfeed.Client
	cfg    *config.Config
}

// New builds a Planner over its four collaborators.
func New(store *spatialstore.Store, solver *pathsolver.Solver, eval *dgvi.Evaluator, feed *transitfeed.Client, cfg *config.Config) *Planner {
	return &Planner{store: store, solver: solver, eval: eval, feed: feed, cfg: cfg}
}

// Plan answers one plan-routes request (spec §6.1), applying the outer
// deadline of spec §5 and returning an empty, non-error slice when no
// candidate survives (spec §4.5's "not an error" rule).
func (p *Planner) Plan(ctx context.Context, req Request) ([]models.RoutePlan, error) {
	if !req.Preferences.Valid() {
		return nil, apperr.New(apperr.InvalidInput, "preferences must be non-negative and sum to 1")
	}
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PlanDeadline)
	defer cancel()

	walkingCh := make(chan []models.RoutePlan, 1)
	go func() {
		walkingCh <- p.walkingCandidates(ctx, req)
	}()

	busCh := make(chan []models.RoutePlan, 1)
	go func() {
		busCh <- p.busCandidates(ctx, req)
	}()

	var walking, bus []models.RoutePlan
	var gotWalking, gotBus bool
	for !gotWalking || !gotBus {
		select {
		case walking = <-walkingCh:
			gotWalking = true
		case bus = <-busCh:
			gotBus = true
		case <-ctx.Done():
			return nil, apperr.Wrap(apperr.ResourceExhausted, "planning request exceeded its deadline", ctx.Err())
		}
	}

	walking = p.scoreAndRank(ctx, walking, req)
	bus = p.scoreAndRank(ctx, bus, req)

	p.enrichVisualization(ctx, bus)

	all := append(walking, bus...)
	if len(all) > req.MaxResults {
		all = all[:req.MaxResults]
	}
	return all, nil
}

func (p *Planner) busCandidates(ctx context.Context, req Request) []models.RoutePlan {
	direct, originSites, destSites, originBatch := p.directBusCandidates(ctx, req)
	transfer := p.transferBusCandidates(ctx, req, originSites, destSites, originBatch)

	combined := append(direct, transfer...)
	sort.Slice(combined, func(i, j int) bool {
		return arrivalTime(combined[i]) < arrivalTime(combined[j])
	})
	if len(combined) > 5 {
		combined = combined[:5]
	}
	return combined
}

func arrivalTime(rp models.RoutePlan) time.Time {
	for i := len(rp.Segments) - 1; i >= 0; i-- {
		seg := rp.Segments[i]
		if seg.Kind == models.SegmentBusRide {
			return seg.ExpectedArrival
		}
	}
	return time.Time{}
}

func logDegraded(component string, err error) {
	if err != nil {
		log.Printf("planner: %s degraded (%v)", component, err)
	}
}
