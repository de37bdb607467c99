package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed is the operator-provided initial tenant state. It is loaded once at
// startup and applied only to tenants that have no persisted snapshot yet;
// persisted state always wins over the seed.
type Seed struct {
	Defaults SeedDefaults `yaml:"defaults"`
	Tenants  []SeedTenant `yaml:"tenants"`
}

type SeedDefaults struct {
	Timezone        string `yaml:"timezone"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Cooldown        struct {
		Enabled            bool `yaml:"enabled"`
		Days               int  `yaml:"days"`
		RecordWhenDisabled bool `yaml:"record_when_disabled"`
	} `yaml:"cooldown"`
}

type SeedTenant struct {
	ID          int64          `yaml:"id"`
	Timezone    string         `yaml:"timezone"`
	AutoEnabled *bool          `yaml:"auto_enabled"`
	AdminRoles  []int64        `yaml:"admin_roles"`
	Templates   []SeedTemplate `yaml:"templates"`
}

type SeedTemplate struct {
	ID          string `yaml:"id"`
	Enabled     *bool  `yaml:"enabled"`
	ChannelID   int64  `yaml:"channel_id"`
	Winners     int    `yaml:"winners"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	StartTime   string `yaml:"start_time"`
	EndTime     string `yaml:"end_time"`
}

// LoadSeed parses the YAML seed file. A missing file yields an empty seed
// with sane defaults rather than an error.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSeed(), nil
		}
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	seed := defaultSeed()
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	if err := seed.validate(); err != nil {
		return nil, err
	}
	return seed, nil
}

func defaultSeed() *Seed {
	s := &Seed{}
	s.Defaults.Timezone = "UTC"
	s.Defaults.DurationMinutes = 1440
	s.Defaults.Cooldown.RecordWhenDisabled = true
	return s
}

func (s *Seed) validate() error {
	if s.Defaults.Timezone != "" {
		if _, err := time.LoadLocation(s.Defaults.Timezone); err != nil {
			return fmt.Errorf("invalid defaults.timezone %q: %w", s.Defaults.Timezone, err)
		}
	}
	if s.Defaults.DurationMinutes <= 0 {
		return fmt.Errorf("defaults.duration_minutes must be positive, got %d", s.Defaults.DurationMinutes)
	}
	if s.Defaults.Cooldown.Days < 0 {
		return fmt.Errorf("defaults.cooldown.days must not be negative, got %d", s.Defaults.Cooldown.Days)
	}

	seenTenants := make(map[int64]bool)
	for _, t := range s.Tenants {
		if t.ID == 0 {
			return fmt.Errorf("tenant entry is missing an id")
		}
		if seenTenants[t.ID] {
			return fmt.Errorf("duplicate tenant id in seed: %d", t.ID)
		}
		seenTenants[t.ID] = true

		if t.Timezone != "" {
			if _, err := time.LoadLocation(t.Timezone); err != nil {
				return fmt.Errorf("tenant %d: invalid timezone %q: %w", t.ID, t.Timezone, err)
			}
		}

		seenTemplates := make(map[string]bool)
		for _, tpl := range t.Templates {
			if tpl.ID == "" {
				return fmt.Errorf("tenant %d: template entry is missing an id", t.ID)
			}
			if seenTemplates[tpl.ID] {
				return fmt.Errorf("tenant %d: duplicate template id %q", t.ID, tpl.ID)
			}
			seenTemplates[tpl.ID] = true
			if tpl.Winners <= 0 {
				return fmt.Errorf("tenant %d: template %q: winners must be greater than zero", t.ID, tpl.ID)
			}
			if _, err := parseWallClock(tpl.StartTime); err != nil {
				return fmt.Errorf("tenant %d: template %q: invalid start_time: %w", t.ID, tpl.ID, err)
			}
			if _, err := parseWallClock(tpl.EndTime); err != nil {
				return fmt.Errorf("tenant %d: template %q: invalid end_time: %w", t.ID, tpl.ID, err)
			}
		}
	}
	return nil
}

func parseWallClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected HH:MM (24h), got %q", value)
	}
	return t, nil
}
