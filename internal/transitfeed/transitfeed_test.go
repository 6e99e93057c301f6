package transitfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFeedServer(t *testing.T, byRoute map[string][]feedDeparture) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deps, ok := byRoute[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(deps))
	}))
}

func TestGetDeparturesFiltersNonBusAndBadTimestamps(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	srv := fakeFeedServer(t, map[string][]feedDeparture{
		"/sites/1/departures": {
			{TransportMode: "BUS", Expected: now, Journey: struct {
				ID string `json:"id"`
			}{ID: "j1"}},
			{TransportMode: "METRO", Expected: now},
			{TransportMode: "BUS", Expected: "not-a-time"},
		},
	})
	defer srv.Close()

	c := New(srv.URL, time.Millisecond, time.Second)
	deps := c.GetDepartures(context.Background(), 1, 600)

	require.Len(t, deps, 1)
	assert.Equal(t, "j1", deps[0].JourneyID)
}

func TestGetDeparturesClampsForecastWindow(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]feedDeparture{})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Millisecond, time.Second)
	c.GetDepartures(context.Background(), 1, MaxForecastSeconds+500)

	assert.Contains(t, gotQuery, "forecast=1200")
}

func TestGetDeparturesDegradesOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Millisecond, time.Second)
	deps := c.GetDepartures(context.Background(), 1, 600)
	assert.Nil(t, deps)
}

func TestGetBatchDeparturesToleratesPerSiteFailure(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	srv := fakeFeedServer(t, map[string][]feedDeparture{
		"/sites/1/departures": {{TransportMode: "BUS", Expected: now}},
		// site 2 is intentionally absent -> 404 -> degrades to nil
	})
	defer srv.Close()

	c := New(srv.URL, time.Millisecond, time.Second)
	out, err := c.GetBatchDepartures(context.Background(), []int64{1, 2}, 600)

	require.NoError(t, err)
	assert.Len(t, out[1], 1)
	assert.Nil(t, out[2])
}

func TestGetBatchDeparturesFailsOnContextCancellation(t *testing.T) {
	c := New("http://unused.invalid", time.Hour, time.Second) // limiter starved
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetBatchDepartures(ctx, []int64{1}, 600)
	assert.Error(t, err)
}
