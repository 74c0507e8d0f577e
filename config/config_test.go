package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/comp-engine/comp"
	"github.com/staffhub/comp-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "./data/comp.db", cfg.DatabasePath)
	assert.Equal(t, "hold_immediately", cfg.PendingHold)

	policy, err := cfg.PremiumPolicy()
	require.NoError(t, err)

	// Defaults mirror comp.DefaultPolicy.
	want := comp.DefaultPolicy()
	assert.True(t, policy.WeekendMultiplier.Equal(want.WeekendMultiplier))
	assert.True(t, policy.EveningMultiplier.Equal(want.EveningMultiplier))
	assert.True(t, policy.NightMultiplier.Equal(want.NightMultiplier))
	assert.True(t, policy.OvertimeMultiplier.Equal(want.OvertimeMultiplier))
	assert.Equal(t, want.EveningStartHour, policy.EveningStartHour)
	assert.Equal(t, want.NightStartHour, policy.NightStartHour)
	assert.Equal(t, want.NightEndHour, policy.NightEndHour)
	assert.True(t, policy.MaxRequestHours.Equal(want.MaxRequestHours))
	assert.Equal(t, comp.HoldImmediately, policy.PendingHold)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COMP_ADDR", ":9090")
	t.Setenv("COMP_WEEKEND_MULTIPLIER", "0.75")
	t.Setenv("COMP_PENDING_HOLD", "hold_on_approval")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)

	policy, err := cfg.PremiumPolicy()
	require.NoError(t, err)
	assert.Equal(t, "0.75", policy.WeekendMultiplier.String())
	assert.Equal(t, comp.HoldOnApproval, policy.PendingHold)
}

func TestPremiumPolicy_InvalidPendingHold(t *testing.T) {
	t.Setenv("COMP_PENDING_HOLD", "sometimes")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = cfg.PremiumPolicy()
	assert.Error(t, err)
}

func TestPremiumPolicy_InvalidHourBoundary(t *testing.T) {
	t.Setenv("COMP_NIGHT_START_HOUR", "25")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = cfg.PremiumPolicy()
	assert.Error(t, err)
}
