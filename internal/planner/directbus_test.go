package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/passbi/routecore/internal/models"
	"github.com/passbi/routecore/internal/spatialstore"
)

func site(id int64) spatialstore.SiteDistance {
	return spatialstore.SiteDistance{Site: models.BusSite{ID: id}}
}

func TestSiteIDs(t *testing.T) {
	sites := []spatialstore.SiteDistance{site(3), site(1), site(2)}
	assert.Equal(t, []int64{3, 1, 2}, siteIDs(sites))
	assert.Empty(t, siteIDs(nil))
}

func TestMatchJourney(t *testing.T) {
	oDep := models.Departure{JourneyID: "J1", LineID: "L1", DirectionCode: "A"}

	t.Run("matches by journey, line and direction across sites", func(t *testing.T) {
		destSites := []spatialstore.SiteDistance{site(10), site(20)}
		destBatch := map[int64][]models.Departure{
			10: {{JourneyID: "J9", LineID: "L1", DirectionCode: "A"}},
			20: {{JourneyID: "J1", LineID: "L1", DirectionCode: "A", StopPointID: 99}},
		}

		dDep, dSite, ok := matchJourney(oDep, destSites, destBatch)
		assert.True(t, ok)
		assert.Equal(t, int64(20), dSite.Site.ID)
		assert.Equal(t, int64(99), dDep.StopPointID)
	})

	t.Run("same journey but different direction does not match", func(t *testing.T) {
		destSites := []spatialstore.SiteDistance{site(10)}
		destBatch := map[int64][]models.Departure{
			10: {{JourneyID: "J1", LineID: "L1", DirectionCode: "B"}},
		}
		_, _, ok := matchJourney(oDep, destSites, destBatch)
		assert.False(t, ok)
	})

	t.Run("no destinations means no match", func(t *testing.T) {
		_, _, ok := matchJourney(oDep, nil, map[int64][]models.Departure{})
		assert.False(t, ok)
	})
}

func TestAssembleDirectBusRejectsInfeasibleTiming(t *testing.T) {
	p := &Planner{}
	now := time.Now()
	oDep := models.Departure{Expected: now}
	dDep := models.Departure{Expected: now.Add(-time.Minute)} // arrives before it departs

	rp, err := p.assembleDirectBus(nil, Request{}, now, spatialstore.SiteDistance{}, oDep, spatialstore.SiteDistance{}, dDep)
	assert.NoError(t, err)
	assert.Nil(t, rp, "a ride duration that is zero or negative must not produce a candidate")
}
