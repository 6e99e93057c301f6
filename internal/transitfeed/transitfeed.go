// Package transitfeed implements the Transit Feed Client (TFC) of spec
// §4.2/§6.3: a client for the remote transit-departures API, pacing
// requests to respect the upstream's unstated rate limits.
//
// No HTTP client library appears anywhere in the retrieved example
// pack (the teacher and its neighbors build HTTP *servers*, not
// outbound clients), so this package uses net/http directly — see
// DESIGN.md for that one stdlib justification. Pacing itself is not
// stdlib: golang.org/x/time/rate (seen in OneBusAway-maglev,
// Nobina-go-trafiklab, va6996-travelingman) replaces a hand-rolled
// time.Sleep loop with the ecosystem's rate-limiting primitive.
package transitfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/passbi/routecore/internal/apperr"
	"github.com/passbi/routecore/internal/models"
)

// MaxForecastSeconds is the upstream's strict forecast-window bound
// (spec §4.2/§6.3).
const MaxForecastSeconds = 1200

// Client is a stateless, shareable TFC (spec §5: "the transit-feed
// client is stateless and safe to share").
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	callTimeout time.Duration
}

// New builds a Client pacing requests at one permit per delay.
func New(baseURL string, delay time.Duration, callTimeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: callTimeout},
		limiter:     rate.NewLimiter(rate.Every(delay), 1),
		callTimeout: callTimeout,
	}
}

type feedDeparture struct {
	Journey struct {
		ID string `json:"id"`
	} `json:"journey"`
	Line struct {
		ID          string `json:"id"`
		Designation string `json:"designation"`
	} `json:"line"`
	DirectionCode string `json:"direction_code"`
	StopPoint     struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"stop_point"`
	Expected      string `json:"expected"`
	Destination   string `json:"destination"`
	TransportMode string `json:"transport_mode"`
}

// GetDepartures implements spec §4.2's getDepartures: bus-mode
// departures at siteId expected within forecastSeconds. Per-site
// failures return an empty slice and a logged warning, never an error
// that would abort a caller's batch (spec §4.5).
func (c *Client) GetDepartures(ctx context.Context, siteID int64, forecastSeconds int) []models.Departure {
	if forecastSeconds > MaxForecastSeconds {
		forecastSeconds = MaxForecastSeconds
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/sites/%d/departures?forecast=%d", c.baseURL, siteID, forecastSeconds)
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("transitfeed: site %d request build failed: %v", siteID, err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("transitfeed: site %d request failed: %v", siteID, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("transitfeed: site %d returned status %d", siteID, resp.StatusCode)
		return nil
	}

	var raw []feedDeparture
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		log.Printf("transitfeed: site %d response decode failed: %v", siteID, err)
		return nil
	}

	out := make([]models.Departure, 0, len(raw))
	for _, d := range raw {
		if d.TransportMode != "" && d.TransportMode != "BUS" {
			continue
		}
		expected, err := time.Parse(time.RFC3339, d.Expected)
		if err != nil {
			log.Printf("transitfeed: site %d skipped departure with bad timestamp %q", siteID, d.Expected)
			continue
		}
		out = append(out, models.Departure{
			JourneyID:       d.Journey.ID,
			LineID:          d.Line.ID,
			LineDesignation: d.Line.Designation,
			DirectionCode:   d.DirectionCode,
			Expected:        expected,
			StopPointID:     d.StopPoint.ID,
			StopPointName:   d.StopPoint.Name,
			Destination:     d.Destination,
		})
	}

	return out
}

// GetBatchDepartures implements spec §4.2's getBatchDepartures:
// sequential getDepartures calls in input order, each paced by the
// client's rate limiter, never failing the whole call for partial
// per-site errors (spec §4.5, §8's empty-site-list and
// one-failing-site boundary properties).
func (c *Client) GetBatchDepartures(ctx context.Context, siteIDs []int64, forecastSeconds int) (map[int64][]models.Departure, error) {
	out := make(map[int64][]models.Departure, len(siteIDs))

	for _, siteID := range siteIDs {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.Wrap(apperr.ResourceExhausted, "batch departures cancelled while pacing", err)
		}

		out[siteID] = c.GetDepartures(ctx, siteID, forecastSeconds)
	}

	return out, nil
}
