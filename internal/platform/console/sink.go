// Package console provides a NotificationSink that writes lifecycle events
// to the process log. Chat-platform adapters replace it in production.
package console

import (
	"context"

	"github.com/rs/zerolog/log"

	"giveaway-bot-backend/internal/features/giveaway/service"
)

type Sink struct{}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Notify(ctx context.Context, event service.Event) error {
	entry := log.Info().
		Str("kind", string(event.Kind)).
		Int64("tenant_id", event.TenantID)
	if event.GiveawayID != "" {
		entry = entry.Str("giveaway_id", event.GiveawayID)
	}
	if event.Title != "" {
		entry = entry.Str("title", event.Title)
	}
	if len(event.Winners) > 0 {
		entry = entry.Ints64("winners", event.Winners)
	}
	if event.Kind == service.EventGiveawayClosed || event.Kind == service.EventGiveawayRerolled {
		entry = entry.Bool("used_fallback", event.UsedFallback)
	}
	if event.Kind == service.EventAutomationToggled {
		entry = entry.Bool("enabled", event.Enabled)
	}
	entry.Msg("Giveaway event")
	return nil
}
