package planner

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/spatialstore"
)

func TestSiteByID(t *testing.T) {
	sites := []spatialstore.SiteDistance{site(1), site(2), site(3)}

	found, ok := siteByID(sites, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(2), found.Site.ID)

	_, ok = siteByID(sites, 99)
	assert.False(t, ok)
}

func TestTransferDeparturesAtMemoizesWithinCache(t *testing.T) {
	p := &Planner{}
	cache := map[int64][]models.Departure{
		5: {{JourneyID: "cached"}},
	}

	deps := p.transferDeparturesAt(nil, 5, 600, cache)
	assert.Len(t, deps, 1)
	assert.Equal(t, "cached", deps[0].JourneyID)
}

func TestBuildTransferPlan(t *testing.T) {
	now := time.Now()
	req := Request{Month: "2026-08"}
	oSite := site(1)
	dSite := site(9)
	oDep := models.Departure{
		JourneyID: "O1", LineID: "L1", LineDesignation: "1", DirectionCode: "A",
		StopPointID: 100, Expected: now.Add(5 * time.Minute),
	}
	d2 := models.Departure{
		JourneyID: "T1", LineID: "L2", LineDesignation: "2", DirectionCode: "B",
		StopPointID: 201, StopPointName: "Transfer Platform B", Expected: now.Add(20 * time.Minute),
	}
	arrivalStop := models.StopPoint{ID: 300, Name: "Destination Stop"}
	walkToStop := models.Segment{Kind: models.SegmentWalking, Duration: time.Minute}
	walkFromStop := models.Segment{Kind: models.SegmentWalking, Duration: 2 * time.Minute}
	transferArrival := now.Add(15 * time.Minute)
	secondRideDuration := 10 * time.Minute

	t.Run("bridges an intra-site transfer when the boarding stop differs from the arrival stop", func(t *testing.T) {
		transferStop := models.StopPoint{ID: 200, SiteID: 50, Point: orb.Point{10, 20}, Name: "Transfer Platform A"}
		d2Stop := models.StopPoint{ID: 201, SiteID: 50, Point: orb.Point{10.001, 20.001}}
		intraWalkDistance := 80.0
		intraWalkDuration := 57 * time.Second

		rp := buildTransferPlan(req, now, oSite, oDep, transferStop, transferArrival, d2, d2Stop,
			intraWalkDistance, intraWalkDuration, arrivalStop, secondRideDuration, dSite,
			walkToStop, walkFromStop, 90*time.Second)

		require.NotNil(t, rp)
		require.Len(t, rp.Segments, 7, "walk, wait, ride, bridging walk, wait, ride, walk")

		bridge := rp.Segments[3]
		assert.Equal(t, models.SegmentWalking, bridge.Kind)
		assert.Equal(t, intraWalkDuration, bridge.Duration)
		assert.Equal(t, intraWalkDistance, bridge.DistanceMeters)
		require.NotNil(t, bridge.IntraSiteTransfer)
		assert.Equal(t, int64(200), bridge.IntraSiteTransfer.FromStopPointID)
		assert.Equal(t, int64(201), bridge.IntraSiteTransfer.ToStopPointID)
		assert.Equal(t, int64(50), bridge.IntraSiteTransfer.SiteID)

		secondWait := rp.Segments[4]
		assert.Equal(t, models.SegmentBusWaiting, secondWait.Kind)
		assert.Equal(t, int64(201), secondWait.StopPointID)
		require.NotNil(t, secondWait.Transfer)
		assert.True(t, secondWait.Transfer.IntraSiteWalk)
		assert.Equal(t, d2.Expected.Sub(transferArrival.Add(intraWalkDuration)), secondWait.Transfer.WaitingTime)
	})

	t.Run("no bridging segment when the second ride boards at the same stop the forward walk landed on", func(t *testing.T) {
		transferStop := models.StopPoint{ID: 201, SiteID: 50, Point: orb.Point{10, 20}, Name: "Transfer Platform B"}
		d2Stop := transferStop

		rp := buildTransferPlan(req, now, oSite, oDep, transferStop, transferArrival, d2, d2Stop,
			0, 0, arrivalStop, secondRideDuration, dSite,
			walkToStop, walkFromStop, 90*time.Second)

		require.NotNil(t, rp)
		require.Len(t, rp.Segments, 6, "walk, wait, ride, wait, ride, walk — no bridge")

		secondWait := rp.Segments[3]
		assert.Equal(t, models.SegmentBusWaiting, secondWait.Kind)
		require.NotNil(t, secondWait.Transfer)
		assert.False(t, secondWait.Transfer.IntraSiteWalk)
		assert.Equal(t, d2.Expected.Sub(transferArrival), secondWait.Transfer.WaitingTime)
	})
}
