package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1.4, cfg.WalkingSpeedMPS)
	assert.Equal(t, 60*time.Second, cfg.TransferMargin)
	assert.Equal(t, 3600*time.Second, cfg.BusSearchMaxDuration)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 20, cfg.DestinationSearchDepth)
}

func TestLoadReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("WALKING_SPEED_MPS", "1.8")
	t.Setenv("API_PORT", "9090")
	t.Setenv("TRANSFER_SEARCH_DEPTH", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1.8, cfg.WalkingSpeedMPS)
	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, 15, cfg.TransferSearchDepth)
}

func TestLoadRejectsNonPositiveWalkingSpeed(t *testing.T) {
	t.Setenv("WALKING_SPEED_MPS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadIgnoresUnparseableOverrides(t *testing.T) {
	t.Setenv("TRANSFER_SEARCH_DEPTH", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.TransferSearchDepth, "falls back to the default on a bad override")
}
