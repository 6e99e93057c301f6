// Package greenness is a thin client for the out-of-scope green-view
// scoring service that spec §6.1's add-gvi-points endpoint calls
// before persisting points: the core submits raw coordinates, the
// service returns a green-view value per point. Grounded on
// internal/transitfeed's own outbound-HTTP shape, since neither the
// teacher nor any example repo in the retrieval pack builds an HTTP
// client for this kind of scoring call.
package greenness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/apperr"
)

// Client calls the greenness service to score raw coordinates.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
}

// New builds a Client bound to baseURL with the given per-call timeout.
func New(baseURL string, callTimeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: callTimeout},
		callTimeout: callTimeout,
	}
}

type scoreRequest struct {
	Points [][2]float64 `json:"points"` // [lon, lat] pairs
}

type scoreResponse struct {
	Values []float64 `json:"values"`
}

// Score submits points to the greenness service and returns one
// green-view value per point, in the same order, per spec §6.1's
// "calls the out-of-scope greenness service and persists returned
// values" contract for add-gvi-points.
func (c *Client) Score(ctx context.Context, points []orb.Point) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	body := scoreRequest{Points: make([][2]float64, len(points))}
	for i, p := range points {
		body.Points[i] = [2]float64{p[0], p[1]}
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "encode greenness score request", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/score", c.baseURL)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "build greenness score request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransientUpstream, "greenness service request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.TransientUpstream, fmt.Sprintf("greenness service returned status %d", resp.StatusCode))
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.TransientUpstream, "decode greenness score response", err)
	}
	if len(parsed.Values) != len(points) {
		return nil, apperr.New(apperr.TransientUpstream, "greenness service returned a mismatched value count")
	}

	return parsed.Values, nil
}
