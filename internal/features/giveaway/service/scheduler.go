package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

const (
	DefaultTickInterval = 15 * time.Second
	cleanupInterval     = 30 * time.Minute
)

// localDateLayout keys the per-day recurring spawn dedupe.
const localDateLayout = "2006-01-02"

// ProcessDueTransitions applies every transition a tenant owes at the
// current time in one snapshot write: overdue activations, overdue closures,
// and recurring template spawns. Deriving the work from persisted timestamps
// rather than timer handles makes the scheduler restart-safe; a failed write
// leaves the snapshot untouched so the same transitions are retried on the
// next tick.
func (s *Service) ProcessDueTransitions(ctx context.Context, tenantID int64) error {
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		now := s.now().UTC()
		changed := false

		for _, giveaway := range t.Giveaways {
			if giveaway.DueToActivate(now) {
				giveaway.Status = models.GiveawayStatusActive
				changed = true
				emit(Event{Kind: EventGiveawayActivated, GiveawayID: giveaway.ID, ChannelID: giveaway.ChannelID, Title: giveaway.Title})
			}
			if giveaway.DueToClose(now) {
				if err := s.closeLocked(t, giveaway, emit); err != nil {
					return err
				}
				changed = true
			}
		}

		spawned, err := s.spawnDueTemplates(t, now, emit)
		if err != nil {
			return err
		}

		if !changed && !spawned {
			return errNoChange
		}
		return nil
	})
}

// spawnDueTemplates instantiates giveaways for recurring templates whose
// local start time has passed today. A template spawns at most once per
// tenant-local calendar day, tracked in ScheduleRuns, so a restart mid-day
// cannot double-spawn.
func (s *Service) spawnDueTemplates(t *models.Tenant, now time.Time, emit func(Event)) (bool, error) {
	if !t.AutoEnabled || len(t.Templates) == 0 {
		return false, nil
	}

	loc, err := t.Location()
	if err != nil {
		log.Error().Err(err).Int64("tenant_id", t.ID).Str("timezone", t.Timezone).Msg("Cannot resolve tenant timezone, skipping recurring spawns")
		return false, nil
	}
	localDate := now.In(loc).Format(localDateLayout)

	spawned := false
	for _, template := range t.Templates {
		if !template.Enabled {
			continue
		}
		if t.ScheduleRuns[template.ID] == localDate {
			continue
		}
		if t.OpenGiveawayForTemplate(template.ID) != nil {
			continue
		}

		start, end, err := template.WindowFor(now, loc)
		if err != nil {
			log.Error().Err(err).Int64("tenant_id", t.ID).Str("template_id", template.ID).Msg("Invalid template window, skipping")
			continue
		}
		if now.Before(start) {
			continue
		}

		giveaway := &models.Giveaway{
			ID:           t.AllocateGiveawayID(),
			ChannelID:    template.ChannelID,
			Title:        template.Title,
			Description:  template.Description,
			WinnersCount: template.WinnersCount,
			StartsAt:     start,
			EndsAt:       end,
			Status:       models.GiveawayStatusActive,
			Participants: []int64{},
			TemplateID:   template.ID,
			CreatedAt:    now,
		}
		t.Giveaways = append(t.Giveaways, giveaway)
		t.ScheduleRuns[template.ID] = localDate
		spawned = true

		log.Info().
			Int64("tenant_id", t.ID).
			Str("template_id", template.ID).
			Str("giveaway_id", giveaway.ID).
			Time("ends_at", end).
			Msg("Recurring giveaway spawned")
		emit(Event{Kind: EventGiveawayCreated, GiveawayID: giveaway.ID, ChannelID: giveaway.ChannelID, Title: giveaway.Title})
		emit(Event{Kind: EventGiveawayActivated, GiveawayID: giveaway.ID, ChannelID: giveaway.ChannelID, Title: giveaway.Title})
	}
	return spawned, nil
}

// Scheduler drives time-based transitions for all tenants with a periodic
// poll. Tenants are processed independently so one tenant's failure or slow
// write never stalls another's transitions.
type Scheduler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	svc      *Service
	interval time.Duration
	wg       sync.WaitGroup
}

func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:      ctx,
		cancel:   cancel,
		svc:      svc,
		interval: interval,
	}
}

// CatchUp applies transitions missed during downtime, synchronously, before
// the process starts accepting interactions. Per-tenant failures are logged
// and retried by the regular tick; only a total failure is returned.
func (s *Scheduler) CatchUp(ctx context.Context) error {
	ids := s.svc.TenantIDs()
	failures := 0
	for _, tenantID := range ids {
		if err := s.svc.ProcessDueTransitions(ctx, tenantID); err != nil {
			failures++
			log.Error().Err(err).Int64("tenant_id", tenantID).Msg("Catch-up failed for tenant")
		}
	}
	log.Info().Int("tenants", len(ids)).Int("failures", failures).Msg("Startup catch-up completed")
	if failures > 0 && failures == len(ids) {
		return fmt.Errorf("catch-up failed for all %d tenants", failures)
	}
	return nil
}

func (s *Scheduler) Start() {
	log.Info().Dur("interval", s.interval).Msg("Starting scheduler")
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanup()
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) tick() {
	for _, tenantID := range s.svc.TenantIDs() {
		if err := s.svc.ProcessDueTransitions(s.ctx, tenantID); err != nil {
			// Leave state untouched; the next tick retries the same work.
			log.Error().Err(err).Int64("tenant_id", tenantID).Msg("Failed to process due transitions")
		}
	}
}

func (s *Scheduler) cleanup() {
	for _, tenantID := range s.svc.TenantIDs() {
		if err := s.svc.Cleanup(s.ctx, tenantID); err != nil {
			log.Error().Err(err).Int64("tenant_id", tenantID).Msg("Cleanup failed")
		}
	}
}
