package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationFromDistance(t *testing.T) {
	assert.Equal(t, 100*time.Second, durationFromDistance(140, 1.4))
	assert.Equal(t, time.Duration(0), durationFromDistance(100, 0), "non-positive speed must not divide by zero")
	assert.Equal(t, time.Duration(0), durationFromDistance(100, -1))
}
