package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeedMissingFileYieldsDefaults(t *testing.T) {
	seed, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "UTC", seed.Defaults.Timezone)
	assert.Equal(t, 1440, seed.Defaults.DurationMinutes)
	assert.True(t, seed.Defaults.Cooldown.RecordWhenDisabled)
	assert.Empty(t, seed.Tenants)
}

func TestLoadSeedParsesTenantsAndTemplates(t *testing.T) {
	path := writeSeed(t, `
defaults:
  timezone: Europe/Berlin
  duration_minutes: 60
  cooldown:
    enabled: true
    days: 2
tenants:
  - id: 100
    timezone: Pacific/Auckland
    auto_enabled: false
    admin_roles: [1, 2]
    templates:
      - id: daily
        channel_id: 555
        winners: 3
        title: Daily drop
        start_time: "09:00"
        end_time: "18:00"
`)

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", seed.Defaults.Timezone)
	assert.Equal(t, 60, seed.Defaults.DurationMinutes)
	assert.True(t, seed.Defaults.Cooldown.Enabled)
	assert.Equal(t, 2, seed.Defaults.Cooldown.Days)

	require.Len(t, seed.Tenants, 1)
	tenant := seed.Tenants[0]
	assert.Equal(t, int64(100), tenant.ID)
	assert.Equal(t, "Pacific/Auckland", tenant.Timezone)
	require.NotNil(t, tenant.AutoEnabled)
	assert.False(t, *tenant.AutoEnabled)
	assert.Equal(t, []int64{1, 2}, tenant.AdminRoles)

	require.Len(t, tenant.Templates, 1)
	tpl := tenant.Templates[0]
	assert.Equal(t, "daily", tpl.ID)
	assert.Equal(t, int64(555), tpl.ChannelID)
	assert.Equal(t, 3, tpl.Winners)
	assert.Nil(t, tpl.Enabled, "enabled defaults upstream when omitted")
}

func TestLoadSeedValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad timezone", "defaults:\n  timezone: Mars/Olympus\n"},
		{"duplicate tenant", "tenants:\n  - id: 1\n  - id: 1\n"},
		{"missing tenant id", "tenants:\n  - timezone: UTC\n"},
		{"missing template id", "tenants:\n  - id: 1\n    templates:\n      - winners: 1\n        start_time: \"09:00\"\n        end_time: \"10:00\"\n"},
		{"zero winners", "tenants:\n  - id: 1\n    templates:\n      - id: t\n        winners: 0\n        start_time: \"09:00\"\n        end_time: \"10:00\"\n"},
		{"bad wall clock", "tenants:\n  - id: 1\n    templates:\n      - id: t\n        winners: 1\n        start_time: \"9am\"\n        end_time: \"10:00\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadSeed(writeSeed(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeedRejectsMalformedYAML(t *testing.T) {
	_, err := LoadSeed(writeSeed(t, "tenants: [unclosed"))
	assert.Error(t, err)
}
