package planner

import (
	"github.com/paulmach/orb"

	"github.com/passbi/routecore/internal/models"
)

// Request is the Planner API request of spec §6.1's `plan-routes`.
type Request struct {
	Origin      orb.Point
	Destination orb.Point
	Month       string // "YYYY-MM"; required, no default month is applied
	Preferences models.Preferences
	MaxResults  int
}

// DefaultMaxResults is spec §6.1's `max_results` default.
const DefaultMaxResults = 4
