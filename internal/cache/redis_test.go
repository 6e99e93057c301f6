package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/passbi/routecore/internal/models"
)

func TestPlanKeyIsDeterministic(t *testing.T) {
	prefs := models.Preferences{WTime: 0.5, WGreen: 0.5}

	a := PlanKey(59.33, 18.06, 59.34, 18.08, "2026-03", prefs)
	b := PlanKey(59.33, 18.06, 59.34, 18.08, "2026-03", prefs)
	assert.Equal(t, a, b)
}

func TestPlanKeyDistinguishesDifferentRequests(t *testing.T) {
	prefs := models.Preferences{WTime: 0.5, WGreen: 0.5}
	other := models.Preferences{WTime: 1, WGreen: 0}

	base := PlanKey(59.33, 18.06, 59.34, 18.08, "2026-03", prefs)

	assert.NotEqual(t, base, PlanKey(59.33, 18.06, 59.34, 18.08, "2026-04", prefs))
	assert.NotEqual(t, base, PlanKey(59.33, 18.06, 59.34, 18.08, "2026-03", other))
	assert.NotEqual(t, base, PlanKey(0, 0, 59.34, 18.08, "2026-03", prefs))
}

func TestLockKeyDerivesFromPlanKey(t *testing.T) {
	assert.Equal(t, "lock:plan:abc", LockKey("plan:abc"))
}
