package models

import (
	"sort"
	"strconv"
	"time"
)

// CooldownPolicy blocks recent winners from eligibility for a number of days.
// Days of 0 disables the cooldown even when Enabled is set.
// RecordWhenDisabled controls whether wins are still written to history while
// enforcement is off, so a later enable does not exempt recent winners.
type CooldownPolicy struct {
	Enabled            bool `json:"enabled"`
	Days               int  `json:"days"`
	RecordWhenDisabled bool `json:"record_when_disabled"`
}

// Active reports whether the policy actually blocks anyone.
func (p CooldownPolicy) Active() bool {
	return p.Enabled && p.Days > 0
}

// Window returns the cooldown duration.
func (p CooldownPolicy) Window() time.Duration {
	return time.Duration(p.Days) * 24 * time.Hour
}

// WinnerHistoryEntry records a win for cooldown eligibility computation.
type WinnerHistoryEntry struct {
	UserID     int64     `json:"user_id"`
	GiveawayID string    `json:"giveaway_id"`
	WonAt      time.Time `json:"won_at"`
}

// Tenant is an independent community with its own timezone, administrators,
// templates, giveaways, and winner history. A tenant exclusively owns all of
// its entities; nothing here is shared across tenants.
type Tenant struct {
	ID             int64                `json:"id"`
	Timezone       string               `json:"timezone"`
	AutoEnabled    bool                 `json:"auto_enabled"`
	Cooldown       CooldownPolicy       `json:"cooldown"`
	AdminRoles     []int64              `json:"admin_roles"`
	Templates      []*RecurringTemplate `json:"templates"`
	Giveaways      []*Giveaway          `json:"giveaways"`
	History        []WinnerHistoryEntry `json:"history"`
	ScheduleRuns   map[string]string    `json:"schedule_runs"` // template ID -> local date of last spawn
	NextGiveawayID int64                `json:"next_giveaway_id"`
}

func NewTenant(id int64, timezone string) *Tenant {
	return &Tenant{
		ID:             id,
		Timezone:       timezone,
		AutoEnabled:    true,
		ScheduleRuns:   make(map[string]string),
		NextGiveawayID: 1,
	}
}

// Location resolves the tenant's IANA timezone.
func (t *Tenant) Location() (*time.Location, error) {
	return time.LoadLocation(t.Timezone)
}

// AllocateGiveawayID returns the next monotonic giveaway identifier.
func (t *Tenant) AllocateGiveawayID() string {
	id := t.NextGiveawayID
	t.NextGiveawayID++
	return strconv.FormatInt(id, 10)
}

func (t *Tenant) Giveaway(id string) *Giveaway {
	for _, g := range t.Giveaways {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (t *Tenant) Template(id string) *RecurringTemplate {
	for _, tpl := range t.Templates {
		if tpl.ID == id {
			return tpl
		}
	}
	return nil
}

// OpenGiveawayForTemplate returns a not-yet-closed giveaway spawned from the
// given template, if any. Used by the scheduler to avoid double-spawning.
func (t *Tenant) OpenGiveawayForTemplate(templateID string) *Giveaway {
	for _, g := range t.Giveaways {
		if g.TemplateID == templateID && g.Status != GiveawayStatusClosed {
			return g
		}
	}
	return nil
}

// BlockedAt returns the set of users inside the cooldown window at now,
// together with each user's most recent win timestamp. The map is empty when
// the policy is inactive.
func (t *Tenant) BlockedAt(now time.Time) map[int64]time.Time {
	blocked := make(map[int64]time.Time)
	if !t.Cooldown.Active() {
		return blocked
	}
	cutoff := now.Add(-t.Cooldown.Window())
	for _, entry := range t.History {
		if entry.WonAt.After(cutoff) {
			if last, ok := blocked[entry.UserID]; !ok || entry.WonAt.After(last) {
				blocked[entry.UserID] = entry.WonAt
			}
		}
	}
	return blocked
}

// RecordWin appends a history entry. The slice stays sorted by WonAt so the
// oldest-win-first fallback ordering can be derived cheaply.
func (t *Tenant) RecordWin(userID int64, giveawayID string, wonAt time.Time) {
	t.History = append(t.History, WinnerHistoryEntry{
		UserID:     userID,
		GiveawayID: giveawayID,
		WonAt:      wonAt,
	})
	sort.SliceStable(t.History, func(i, j int) bool {
		return t.History[i].WonAt.Before(t.History[j].WonAt)
	})
}

// HasAdminRole reports whether any of the caller's roles is a tenant admin role.
func (t *Tenant) HasAdminRole(callerRoles []int64) bool {
	for _, admin := range t.AdminRoles {
		for _, role := range callerRoles {
			if admin == role {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of the tenant. Mutations are applied to a clone
// and only installed after a successful persistence write.
func (t *Tenant) Clone() *Tenant {
	clone := *t
	clone.AdminRoles = append([]int64(nil), t.AdminRoles...)
	clone.History = append([]WinnerHistoryEntry(nil), t.History...)

	clone.Templates = make([]*RecurringTemplate, len(t.Templates))
	for i, tpl := range t.Templates {
		tplCopy := *tpl
		clone.Templates[i] = &tplCopy
	}

	clone.Giveaways = make([]*Giveaway, len(t.Giveaways))
	for i, g := range t.Giveaways {
		clone.Giveaways[i] = g.Clone()
	}

	clone.ScheduleRuns = make(map[string]string, len(t.ScheduleRuns))
	for k, v := range t.ScheduleRuns {
		clone.ScheduleRuns[k] = v
	}
	return &clone
}
