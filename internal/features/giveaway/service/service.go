package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"giveaway-bot-backend/internal/common/config"
	apperrors "giveaway-bot-backend/internal/common/errors"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	"giveaway-bot-backend/internal/features/giveaway/selection"
	"giveaway-bot-backend/internal/utils/random"
)

const (
	// Closed giveaways are kept at least this long when cooldown is disabled.
	minRetention = 14 * 24 * time.Hour
	// History entries are kept one extra day past the cooldown window so
	// eligibility near the boundary is never computed from missing rows.
	historyGraceMargin = 24 * time.Hour
)

// Defaults hold tenant bootstrap values taken from configuration.
type Defaults struct {
	Timezone       string
	ManualDuration time.Duration
	Cooldown       models.CooldownPolicy
}

// tenantEntry serializes all mutations of one tenant. Operations on
// different tenants never contend with each other.
type tenantEntry struct {
	mu     sync.Mutex
	tenant *models.Tenant
}

// Service is the giveaway lifecycle engine. Every mutation follows the same
// discipline: clone the tenant snapshot, transform the clone, persist it,
// and only then install it in memory, so a failed write leaves prior state
// intact and no giveaway is ever half-transitioned.
type Service struct {
	repo     repository.TenantRepository
	sink     NotificationSink
	auth     Authorizer
	src      random.Source
	defaults Defaults

	mu      sync.RWMutex
	tenants map[int64]*tenantEntry

	now func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source, used by tests and the scheduler.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithAuthorizer installs a platform-backed authorization check.
func WithAuthorizer(auth Authorizer) Option {
	return func(s *Service) { s.auth = auth }
}

// WithRandomSource overrides the selection randomness, used by tests.
func WithRandomSource(src random.Source) Option {
	return func(s *Service) { s.src = src }
}

func NewService(repo repository.TenantRepository, sink NotificationSink, defaults Defaults, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sink:     sink,
		src:      random.NewCryptoSource(),
		defaults: defaults,
		tenants:  make(map[int64]*tenantEntry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load migrates and reads all persisted tenants into memory. Must be called
// once before any other operation.
func (s *Service) Load(ctx context.Context) error {
	if err := s.repo.MigrateIfNeeded(ctx); err != nil {
		return apperrors.NewPersistenceError("migrate", err)
	}
	tenants, err := s.repo.LoadAll(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("load", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, tenant := range tenants {
		s.tenants[id] = &tenantEntry{tenant: tenant}
	}
	log.Info().Int("tenants", len(tenants)).Msg("Tenant state loaded")
	return nil
}

// Bootstrap applies the YAML seed: tenants without a persisted snapshot are
// created with the seeded settings; existing snapshots always win.
func (s *Service) Bootstrap(ctx context.Context, seed *config.Seed) error {
	if seed == nil {
		return nil
	}
	for _, st := range seed.Tenants {
		s.mu.RLock()
		_, exists := s.tenants[st.ID]
		s.mu.RUnlock()
		if exists {
			continue
		}

		tz := st.Timezone
		if tz == "" {
			tz = s.defaults.Timezone
		}
		tenant := models.NewTenant(st.ID, tz)
		tenant.Cooldown = s.defaults.Cooldown
		tenant.AdminRoles = dedupeRoles(st.AdminRoles)
		if st.AutoEnabled != nil {
			tenant.AutoEnabled = *st.AutoEnabled
		}
		for _, tpl := range st.Templates {
			enabled := true
			if tpl.Enabled != nil {
				enabled = *tpl.Enabled
			}
			template := &models.RecurringTemplate{
				ID:           tpl.ID,
				ChannelID:    tpl.ChannelID,
				WinnersCount: tpl.Winners,
				Title:        tpl.Title,
				Description:  tpl.Description,
				StartTime:    tpl.StartTime,
				EndTime:      tpl.EndTime,
				Enabled:      enabled,
			}
			if err := template.Validate(); err != nil {
				return apperrors.NewValidationError("templates", err.Error())
			}
			tenant.Templates = append(tenant.Templates, template)
		}

		if err := s.repo.SaveTenant(ctx, tenant); err != nil {
			return apperrors.NewPersistenceError("bootstrap", err)
		}
		s.mu.Lock()
		s.tenants[st.ID] = &tenantEntry{tenant: tenant}
		s.mu.Unlock()
		log.Info().Int64("tenant_id", st.ID).Int("templates", len(tenant.Templates)).Msg("Tenant seeded")
	}
	return nil
}

// EnsureTenant creates a tenant with default settings if it does not exist.
func (s *Service) EnsureTenant(ctx context.Context, tenantID int64) error {
	s.mu.RLock()
	_, exists := s.tenants[tenantID]
	s.mu.RUnlock()
	if exists {
		return nil
	}

	tenant := models.NewTenant(tenantID, s.defaults.Timezone)
	tenant.Cooldown = s.defaults.Cooldown
	if err := s.repo.SaveTenant(ctx, tenant); err != nil {
		return apperrors.NewPersistenceError("ensure tenant", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenants[tenantID]; !exists {
		s.tenants[tenantID] = &tenantEntry{tenant: tenant}
	}
	return nil
}

// TenantIDs returns the IDs of all loaded tenants.
func (s *Service) TenantIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	return ids
}

func (s *Service) entry(tenantID int64) (*tenantEntry, error) {
	s.mu.RLock()
	entry, ok := s.tenants[tenantID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewTenantNotFoundError(tenantID)
	}
	return entry, nil
}

// errNoChange signals that fn left the snapshot untouched and no write is
// needed. Not an error for callers.
var errNoChange = errors.New("no change")

// withTenant runs fn against a clone of the tenant snapshot under the
// tenant's lock, persists the clone, installs it, and then delivers the
// events fn collected. Returning an error from fn aborts with no mutation.
func (s *Service) withTenant(ctx context.Context, tenantID int64, fn func(t *models.Tenant, emit func(Event)) error) error {
	entry, err := s.entry(tenantID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	clone := entry.tenant.Clone()
	var events []Event
	emit := func(e Event) {
		e.TenantID = tenantID
		if e.OccurredAt.IsZero() {
			e.OccurredAt = s.now()
		}
		events = append(events, e)
	}

	if err := fn(clone, emit); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}

	if err := s.repo.SaveTenant(ctx, clone); err != nil {
		return apperrors.NewPersistenceError("save tenant", err)
	}
	entry.tenant = clone

	for _, event := range events {
		if s.sink == nil {
			continue
		}
		if err := s.sink.Notify(ctx, event); err != nil {
			log.Warn().Err(err).Str("kind", string(event.Kind)).Int64("tenant_id", tenantID).Msg("Notification sink failed")
		}
	}
	return nil
}

// readTenant runs fn against the current snapshot under the tenant's lock.
func (s *Service) readTenant(tenantID int64, fn func(t *models.Tenant) error) error {
	entry, err := s.entry(tenantID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.tenant)
}

// IsAuthorized is the capability check consumed before any admin command.
func (s *Service) IsAuthorized(tenantID int64, callerRoles []int64) bool {
	if s.auth != nil {
		return s.auth.IsAuthorized(tenantID, callerRoles)
	}
	authorized := false
	_ = s.readTenant(tenantID, func(t *models.Tenant) error {
		authorized = t.HasAdminRole(callerRoles)
		return nil
	})
	return authorized
}

// Create validates parameters and produces a new giveaway in scheduled or
// active state depending on its start time.
func (s *Service) Create(ctx context.Context, tenantID int64, params models.GiveawayCreate) (*models.Giveaway, error) {
	now := s.now().UTC()
	if params.WinnersCount < 1 {
		return nil, apperrors.NewValidationError("winners_count", "must be at least 1")
	}
	if params.StartsAt.IsZero() {
		params.StartsAt = now
	}
	if params.EndsAt.IsZero() {
		params.EndsAt = params.StartsAt.Add(s.defaults.ManualDuration)
	}
	if !params.EndsAt.After(params.StartsAt) {
		return nil, apperrors.NewValidationError("ends_at", "must be after the start time")
	}

	var created *models.Giveaway
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		status := models.GiveawayStatusScheduled
		if !params.StartsAt.After(now) {
			status = models.GiveawayStatusActive
		}
		giveaway := &models.Giveaway{
			ID:           t.AllocateGiveawayID(),
			ChannelID:    params.ChannelID,
			Title:        params.Title,
			Description:  params.Description,
			WinnersCount: params.WinnersCount,
			StartsAt:     params.StartsAt.UTC(),
			EndsAt:       params.EndsAt.UTC(),
			Status:       status,
			Participants: []int64{},
			TemplateID:   params.TemplateID,
			CreatedAt:    now,
		}
		t.Giveaways = append(t.Giveaways, giveaway)
		created = giveaway.Clone()

		emit(Event{Kind: EventGiveawayCreated, GiveawayID: giveaway.ID, ChannelID: giveaway.ChannelID, Title: giveaway.Title})
		if status == models.GiveawayStatusActive {
			emit(Event{Kind: EventGiveawayActivated, GiveawayID: giveaway.ID, ChannelID: giveaway.ChannelID, Title: giveaway.Title})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("tenant_id", tenantID).Str("giveaway_id", created.ID).Time("ends_at", created.EndsAt).Msg("Giveaway created")
	return created, nil
}

// Activate moves a scheduled giveaway to active once its start time passed.
// Activating an already active giveaway is a no-op.
func (s *Service) Activate(ctx context.Context, tenantID int64, giveawayID string) error {
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		switch giveaway.Status {
		case models.GiveawayStatusActive:
			return nil
		case models.GiveawayStatusClosed:
			return apperrors.NewInvalidStateError("activate", string(giveaway.Status))
		}
		if s.now().Before(giveaway.StartsAt) {
			return apperrors.NewInvalidStateError("activate", "start time not reached")
		}
		giveaway.Status = models.GiveawayStatusActive
		emit(Event{Kind: EventGiveawayActivated, GiveawayID: giveaway.ID, ChannelID: giveaway.ChannelID, Title: giveaway.Title})
		return nil
	})
}

// Join adds a participant to an active giveaway. Joining twice is a no-op;
// the returned flag reports whether membership actually changed.
func (s *Service) Join(ctx context.Context, tenantID int64, giveawayID string, userID int64) (bool, error) {
	joined := false
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		if giveaway.Status != models.GiveawayStatusActive {
			return apperrors.NewInvalidStateError("join", string(giveaway.Status))
		}
		joined = giveaway.AddParticipant(userID)
		return nil
	})
	return joined, err
}

// Leave removes a participant from an active giveaway.
func (s *Service) Leave(ctx context.Context, tenantID int64, giveawayID string, userID int64) (bool, error) {
	left := false
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		if giveaway.Status != models.GiveawayStatusActive {
			return apperrors.NewInvalidStateError("leave", string(giveaway.Status))
		}
		left = giveaway.RemoveParticipant(userID)
		return nil
	})
	return left, err
}

// Close transitions a scheduled or active giveaway to closed, draws winners
// against the tenant's current cooldown state, and records winner history.
func (s *Service) Close(ctx context.Context, tenantID int64, giveawayID string) (*models.Giveaway, error) {
	var closed *models.Giveaway
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		if giveaway.Status == models.GiveawayStatusClosed {
			return apperrors.NewInvalidStateError("close", string(giveaway.Status))
		}
		if err := s.closeLocked(t, giveaway, emit); err != nil {
			return err
		}
		closed = giveaway.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// closeLocked draws winners and finalizes the giveaway. The caller holds the
// tenant lock and has verified the giveaway is not closed yet.
func (s *Service) closeLocked(t *models.Tenant, giveaway *models.Giveaway, emit func(Event)) error {
	now := s.now().UTC()
	blocked := t.BlockedAt(now)

	result, err := selection.Select(giveaway.Participants, blocked, giveaway.WinnersCount, s.src)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "winner selection failed")
	}

	giveaway.Status = models.GiveawayStatusClosed
	giveaway.Winners = result.Winners
	giveaway.UsedFallback = result.UsedFallback
	giveaway.ClosedAt = now

	if t.Cooldown.Enabled || t.Cooldown.RecordWhenDisabled {
		for _, winner := range result.Winners {
			t.RecordWin(winner, giveaway.ID, now)
		}
	}

	for _, line := range result.Trail {
		log.Debug().Int64("tenant_id", t.ID).Str("giveaway_id", giveaway.ID).Msg(line)
	}
	log.Info().
		Int64("tenant_id", t.ID).
		Str("giveaway_id", giveaway.ID).
		Int("winners", len(result.Winners)).
		Bool("used_fallback", result.UsedFallback).
		Msg("Giveaway closed")

	emit(Event{
		Kind:         EventGiveawayClosed,
		GiveawayID:   giveaway.ID,
		ChannelID:    giveaway.ChannelID,
		Title:        giveaway.Title,
		Winners:      append([]int64(nil), result.Winners...),
		UsedFallback: result.UsedFallback,
	})
	return nil
}

// Edit updates winner count, title, description, or end time of a giveaway
// that has not closed yet.
func (s *Service) Edit(ctx context.Context, tenantID int64, giveawayID string, update models.GiveawayUpdate) (*models.Giveaway, error) {
	var edited *models.Giveaway
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		if giveaway.Status == models.GiveawayStatusClosed {
			return apperrors.NewInvalidStateError("edit", string(giveaway.Status))
		}

		if update.WinnersCount != nil {
			if *update.WinnersCount < 1 {
				return apperrors.NewValidationError("winners_count", "must be at least 1")
			}
			giveaway.WinnersCount = *update.WinnersCount
		}
		if update.EndsAt != nil {
			if !update.EndsAt.After(giveaway.StartsAt) {
				return apperrors.NewValidationError("ends_at", "must be after the start time")
			}
			giveaway.EndsAt = update.EndsAt.UTC()
		}
		if update.Title != nil {
			giveaway.Title = *update.Title
		}
		if update.Description != nil {
			giveaway.Description = *update.Description
		}
		edited = giveaway.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Reroll replaces the winners of a closed giveaway with a fresh independent
// draw over the same participant set and the tenant's current cooldown state.
// It never reopens the giveaway and does not extend winner history.
func (s *Service) Reroll(ctx context.Context, tenantID int64, giveawayID string) (*models.Giveaway, error) {
	var rerolled *models.Giveaway
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		if giveaway.Status != models.GiveawayStatusClosed {
			return apperrors.NewInvalidStateError("reroll", string(giveaway.Status))
		}

		blocked := t.BlockedAt(s.now().UTC())
		result, err := selection.Select(giveaway.Participants, blocked, giveaway.WinnersCount, s.src)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "winner selection failed")
		}
		giveaway.Winners = result.Winners
		giveaway.UsedFallback = result.UsedFallback
		rerolled = giveaway.Clone()

		emit(Event{
			Kind:         EventGiveawayRerolled,
			GiveawayID:   giveaway.ID,
			ChannelID:    giveaway.ChannelID,
			Title:        giveaway.Title,
			Winners:      append([]int64(nil), result.Winners...),
			UsedFallback: result.UsedFallback,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("tenant_id", tenantID).Str("giveaway_id", giveawayID).Ints64("winners", rerolled.Winners).Msg("Giveaway rerolled")
	return rerolled, nil
}

// GetGiveaway returns a copy of a giveaway.
func (s *Service) GetGiveaway(tenantID int64, giveawayID string) (*models.Giveaway, error) {
	var found *models.Giveaway
	err := s.readTenant(tenantID, func(t *models.Tenant) error {
		giveaway := t.Giveaway(giveawayID)
		if giveaway == nil {
			return apperrors.NewGiveawayNotFoundError(giveawayID)
		}
		found = giveaway.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListGiveaways returns copies of all giveaways of a tenant.
func (s *Service) ListGiveaways(tenantID int64) ([]*models.Giveaway, error) {
	var list []*models.Giveaway
	err := s.readTenant(tenantID, func(t *models.Tenant) error {
		list = make([]*models.Giveaway, len(t.Giveaways))
		for i, g := range t.Giveaways {
			list[i] = g.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// TenantSnapshot returns a deep copy of the tenant's full state.
func (s *Service) TenantSnapshot(tenantID int64) (*models.Tenant, error) {
	var snapshot *models.Tenant
	err := s.readTenant(tenantID, func(t *models.Tenant) error {
		snapshot = t.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ToggleAutomation enables or disables recurring scheduling for a tenant.
func (s *Service) ToggleAutomation(ctx context.Context, tenantID int64, enabled bool) error {
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		if t.AutoEnabled == enabled {
			return errNoChange
		}
		t.AutoEnabled = enabled
		emit(Event{Kind: EventAutomationToggled, Enabled: enabled})
		return nil
	})
}

// SetCooldownPolicy replaces the tenant's cooldown policy.
func (s *Service) SetCooldownPolicy(ctx context.Context, tenantID int64, policy models.CooldownPolicy) error {
	if policy.Days < 0 {
		return apperrors.NewValidationError("days", "must not be negative")
	}
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		t.Cooldown = policy
		return nil
	})
}

// SetTimezone changes the tenant's IANA timezone.
func (s *Service) SetTimezone(ctx context.Context, tenantID int64, timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return apperrors.NewValidationError("timezone", "must be a valid IANA timezone name")
	}
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		t.Timezone = timezone
		return nil
	})
}

// AddAdminRole grants a role admin rights; returns false if already granted.
func (s *Service) AddAdminRole(ctx context.Context, tenantID int64, roleID int64) (bool, error) {
	added := false
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		for _, r := range t.AdminRoles {
			if r == roleID {
				return errNoChange
			}
		}
		t.AdminRoles = append(t.AdminRoles, roleID)
		added = true
		return nil
	})
	return added, err
}

// RemoveAdminRole revokes a role's admin rights.
func (s *Service) RemoveAdminRole(ctx context.Context, tenantID int64, roleID int64) (bool, error) {
	removed := false
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		for i, r := range t.AdminRoles {
			if r == roleID {
				t.AdminRoles = append(t.AdminRoles[:i], t.AdminRoles[i+1:]...)
				removed = true
				return nil
			}
		}
		return errNoChange
	})
	return removed, err
}

// AddTemplate registers a recurring template for the tenant. A missing ID is
// generated.
func (s *Service) AddTemplate(ctx context.Context, tenantID int64, template models.RecurringTemplate) (*models.RecurringTemplate, error) {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	if err := template.Validate(); err != nil {
		return nil, apperrors.NewValidationError("template", err.Error())
	}

	var stored *models.RecurringTemplate
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		if t.Template(template.ID) != nil {
			return apperrors.NewValidationError("id", "template id already exists")
		}
		tplCopy := template
		t.Templates = append(t.Templates, &tplCopy)
		stored = &template
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// SetTemplateEnabled enables or disables a recurring template.
func (s *Service) SetTemplateEnabled(ctx context.Context, tenantID int64, templateID string, enabled bool) (bool, error) {
	changed := false
	err := s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		template := t.Template(templateID)
		if template == nil {
			return apperrors.NewTemplateNotFoundError(templateID)
		}
		if template.Enabled != enabled {
			template.Enabled = enabled
			changed = true
			return nil
		}
		return errNoChange
	})
	return changed, err
}

// RemoveTemplate deletes a recurring template. Giveaways it previously
// spawned are untouched.
func (s *Service) RemoveTemplate(ctx context.Context, tenantID int64, templateID string) error {
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		for i, tpl := range t.Templates {
			if tpl.ID == templateID {
				t.Templates = append(t.Templates[:i], t.Templates[i+1:]...)
				delete(t.ScheduleRuns, templateID)
				return nil
			}
		}
		return apperrors.NewTemplateNotFoundError(templateID)
	})
}

// Cleanup removes closed giveaways that fell out of the retention window and
// history entries no eligibility computation can need anymore. History rows
// inside the cooldown window (plus a grace margin) are always retained.
func (s *Service) Cleanup(ctx context.Context, tenantID int64) error {
	return s.withTenant(ctx, tenantID, func(t *models.Tenant, emit func(Event)) error {
		now := s.now().UTC()
		retention := minRetention
		if t.Cooldown.Active() {
			retention = t.Cooldown.Window()
		}
		cutoff := now.Add(-retention)

		kept := t.Giveaways[:0]
		removed := 0
		for _, g := range t.Giveaways {
			if g.Status == models.GiveawayStatusClosed && g.EndsAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, g)
		}
		t.Giveaways = kept

		historyCutoff := now.Add(-(retention + historyGraceMargin))
		keptHistory := t.History[:0]
		droppedHistory := 0
		for _, entry := range t.History {
			if entry.WonAt.Before(historyCutoff) {
				droppedHistory++
				continue
			}
			keptHistory = append(keptHistory, entry)
		}
		t.History = keptHistory

		if removed == 0 && droppedHistory == 0 {
			return errNoChange
		}
		log.Info().
			Int64("tenant_id", t.ID).
			Int("giveaways_removed", removed).
			Int("history_removed", droppedHistory).
			Msg("Cleanup completed")
		return nil
	})
}

func dedupeRoles(roles []int64) []int64 {
	seen := make(map[int64]bool, len(roles))
	out := make([]int64, 0, len(roles))
	for _, r := range roles {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
