package planner

import "github.com/passbi/routecore/internal/models"

// walkingStrategy names one of the three preference variants spec
// §4.4.1 runs the Path Solver under, grounded on the teacher's
// internal/routing/strategy.go Strategy-per-preference-profile pattern
// (there: Direct/Simple/Fast/NoTransfer; here: user/ASAP/GROOT).
type walkingStrategy struct {
	Name  string
	Prefs models.Preferences
}

// walkingStrategies returns the three strategies in the priority order
// spec §4.4.1 specifies for deduplication survivorship: user, ASAP,
// GROOT.
func walkingStrategies(userPrefs models.Preferences) []walkingStrategy {
	return []walkingStrategy{
		{Name: "user", Prefs: userPrefs},
		{Name: "ASAP", Prefs: models.Preferences{WTime: 1, WGreen: 0}},
		{Name: "GROOT", Prefs: models.Preferences{WTime: 0, WGreen: 1}},
	}
}
