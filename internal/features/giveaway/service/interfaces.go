package service

import (
	"context"
	"time"
)

// EventKind identifies a lifecycle event delivered to notification sinks.
type EventKind string

const (
	EventGiveawayCreated   EventKind = "giveaway_created"
	EventGiveawayActivated EventKind = "giveaway_activated"
	EventGiveawayClosed    EventKind = "giveaway_closed"
	EventGiveawayRerolled  EventKind = "giveaway_rerolled"
	EventAutomationToggled EventKind = "automation_toggled"
)

// Event describes a committed lifecycle transition. Events are emitted only
// after the new tenant snapshot has been persisted.
type Event struct {
	Kind         EventKind `json:"kind"`
	TenantID     int64     `json:"tenant_id"`
	GiveawayID   string    `json:"giveaway_id,omitempty"`
	ChannelID    int64     `json:"channel_id,omitempty"`
	Title        string    `json:"title,omitempty"`
	Winners      []int64   `json:"winners,omitempty"`
	UsedFallback bool      `json:"used_fallback,omitempty"`
	Enabled      bool      `json:"enabled,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NotificationSink receives lifecycle events for rendering or audit. A sink
// failure is logged and never rolls back the transition that produced it.
type NotificationSink interface {
	Notify(ctx context.Context, event Event) error
}

// Authorizer decides whether a caller may run admin commands against a
// tenant. The chat-platform adapter supplies an implementation backed by
// platform roles; when none is injected the service falls back to the
// tenant's own admin role list.
type Authorizer interface {
	IsAuthorized(tenantID int64, callerRoles []int64) bool
}
