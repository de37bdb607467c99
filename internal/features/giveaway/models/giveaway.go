package models

import (
	"time"
)

// GiveawayStatus represents the status of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusScheduled GiveawayStatus = "scheduled" // Created, start time not reached yet
	GiveawayStatusActive    GiveawayStatus = "active"    // Accepting participants
	GiveawayStatusClosed    GiveawayStatus = "closed"    // Winners drawn, immutable record
)

// Giveaway represents a single time-bounded drawing instance. IDs are
// assigned monotonically within a tenant.
type Giveaway struct {
	ID           string         `json:"id"`
	ChannelID    int64          `json:"channel_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	WinnersCount int            `json:"winners_count"`
	StartsAt     time.Time      `json:"starts_at"`
	EndsAt       time.Time      `json:"ends_at"`
	Status       GiveawayStatus `json:"status"`
	Participants []int64        `json:"participants"`
	Winners      []int64        `json:"winners,omitempty"`
	UsedFallback bool           `json:"used_fallback,omitempty"`
	TemplateID   string         `json:"template_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ClosedAt     time.Time      `json:"closed_at,omitempty"`
}

// AddParticipant adds a user unless already present. Insertion order is
// preserved because fallback selection tie-breaking depends on it.
func (g *Giveaway) AddParticipant(userID int64) bool {
	for _, id := range g.Participants {
		if id == userID {
			return false
		}
	}
	g.Participants = append(g.Participants, userID)
	return true
}

// RemoveParticipant removes a user if present.
func (g *Giveaway) RemoveParticipant(userID int64) bool {
	for i, id := range g.Participants {
		if id == userID {
			g.Participants = append(g.Participants[:i], g.Participants[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Giveaway) HasParticipant(userID int64) bool {
	for _, id := range g.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// DueToActivate reports whether a scheduled giveaway should be active at now.
func (g *Giveaway) DueToActivate(now time.Time) bool {
	return g.Status == GiveawayStatusScheduled && !now.Before(g.StartsAt)
}

// DueToClose reports whether an open giveaway should be closed at now.
func (g *Giveaway) DueToClose(now time.Time) bool {
	return g.Status != GiveawayStatusClosed && !now.Before(g.EndsAt)
}

func (g *Giveaway) IsClosed() bool {
	return g.Status == GiveawayStatusClosed
}

// Clone returns a deep copy of the giveaway.
func (g *Giveaway) Clone() *Giveaway {
	clone := *g
	clone.Participants = append([]int64(nil), g.Participants...)
	clone.Winners = append([]int64(nil), g.Winners...)
	return &clone
}

// GiveawayCreate carries parameters for creating a giveaway.
type GiveawayCreate struct {
	ChannelID    int64     `json:"channel_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	WinnersCount int       `json:"winners_count"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	TemplateID   string    `json:"template_id,omitempty"`
}

// GiveawayUpdate carries optional fields for editing an open giveaway.
type GiveawayUpdate struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	WinnersCount *int       `json:"winners_count,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
}
