package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

func TestProcessDueTransitionsActivatesThenCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.Create(ctx, 1, models.GiveawayCreate{
		Title:        "timed",
		WinnersCount: 1,
		StartsAt:     testBase.Add(time.Hour),
		EndsAt:       testBase.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusScheduled, g.Status)

	// Before the start time nothing is due.
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	got, err := f.svc.GetGiveaway(1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusScheduled, got.Status)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	got, err = f.svc.GetGiveaway(1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusActive, got.Status)

	_, err = f.svc.Join(ctx, 1, g.ID, 7)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	got, err = f.svc.GetGiveaway(1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusClosed, got.Status)
	assert.Equal(t, []int64{7}, got.Winners)
}

func TestProcessDueTransitionsAppliesMissedActivationAndClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The whole lifetime of the giveaway elapses while no tick runs, as after
	// a long outage. One pass activates and closes it in a single write.
	g, err := f.svc.Create(ctx, 1, models.GiveawayCreate{
		WinnersCount: 1,
		StartsAt:     testBase.Add(time.Hour),
		EndsAt:       testBase.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	saves := f.repo.saveCount()

	f.clock.Advance(3 * time.Hour)
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))

	got, err := f.svc.GetGiveaway(1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusClosed, got.Status)
	assert.Empty(t, got.Winners, "nobody joined")
	assert.Equal(t, saves+1, f.repo.saveCount())
}

func TestCatchUpClosesOverdueAfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g := f.createActive(t, 1)
	_, err := f.svc.Join(ctx, 1, g.ID, 9)
	require.NoError(t, err)

	// Restart past the end time: a fresh process over the same repository
	// must close the giveaway during catch-up, before serving anything.
	f.clock.Advance(2 * time.Hour)
	restarted := NewService(f.repo, &captureSink{}, Defaults{Timezone: "UTC", ManualDuration: time.Hour}, WithClock(f.clock.Now))
	require.NoError(t, restarted.Load(ctx))

	scheduler := NewScheduler(restarted, time.Second)
	require.NoError(t, scheduler.CatchUp(ctx))

	got, err := restarted.GetGiveaway(1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusClosed, got.Status)
	assert.Equal(t, []int64{9}, got.Winners)
}

func addDailyTemplate(t *testing.T, f *fixture, startTime, endTime string) *models.RecurringTemplate {
	t.Helper()
	tpl, err := f.svc.AddTemplate(context.Background(), 1, models.RecurringTemplate{
		Title:        "Daily drop",
		StartTime:    startTime,
		EndTime:      endTime,
		WinnersCount: 1,
		Enabled:      true,
	})
	require.NoError(t, err)
	return tpl
}

func TestRecurringSpawnsOncePerLocalDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := addDailyTemplate(t, f, "09:00", "18:00")
	f.sink.reset()

	// testBase is 12:00 UTC, inside the window.
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	spawned := list[0]
	assert.Equal(t, tpl.ID, spawned.TemplateID)
	assert.Equal(t, models.GiveawayStatusActive, spawned.Status)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), spawned.StartsAt)
	assert.Equal(t, time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC), spawned.EndsAt)
	assert.Equal(t, []EventKind{EventGiveawayCreated, EventGiveawayActivated}, f.sink.kinds())

	// Subsequent ticks the same day spawn nothing.
	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err = f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecurringDedupeSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addDailyTemplate(t, f, "09:00", "18:00")
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))

	// A mid-day restart replays catch-up; the persisted spawn marker must
	// prevent a duplicate for the same local day.
	restarted := NewService(f.repo, &captureSink{}, Defaults{Timezone: "UTC", ManualDuration: time.Hour}, WithClock(f.clock.Now))
	require.NoError(t, restarted.Load(ctx))
	require.NoError(t, NewScheduler(restarted, time.Second).CatchUp(ctx))

	list, err := restarted.ListGiveaways(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecurringSpawnsAgainNextDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addDailyTemplate(t, f, "09:00", "18:00")

	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))

	// End of day one: the spawned giveaway closes.
	f.clock.Advance(7 * time.Hour) // 19:00
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.GiveawayStatusClosed, list[0].Status)

	// Noon next day: a fresh instance spawns.
	f.clock.Advance(17 * time.Hour) // 12:00 next day
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err = f.svc.ListGiveaways(1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.GiveawayStatusActive, list[1].Status)
	assert.Equal(t, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), list[1].StartsAt)
}

func TestRecurringSkipsBeforeWindowStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addDailyTemplate(t, f, "15:00", "18:00") // clock is at 12:00

	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Empty(t, list)

	f.clock.Advance(3 * time.Hour)
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err = f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecurringRespectsAutomationToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addDailyTemplate(t, f, "09:00", "18:00")
	require.NoError(t, f.svc.ToggleAutomation(ctx, 1, false))

	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.svc.ToggleAutomation(ctx, 1, true))
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err = f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecurringRespectsDisabledTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := addDailyTemplate(t, f, "09:00", "18:00")
	_, err := f.svc.SetTemplateEnabled(ctx, 1, tpl.ID, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecurringUsesTenantLocalDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// UTC+12: at 12:00 UTC the tenant-local wall clock reads 00:00 next day.
	require.NoError(t, f.svc.SetTimezone(ctx, 1, "Pacific/Auckland"))
	addDailyTemplate(t, f, "23:00", "23:30")

	// Local time just passed midnight, before today's 23:00 window.
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecurringSkipsWhilePreviousInstanceOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := addDailyTemplate(t, f, "09:00", "18:00")
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))

	// Next day, but the operator extended the first instance past midnight:
	// no second concurrent instance for the same template.
	list, err := f.svc.ListGiveaways(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	ends := time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC)
	_, err = f.svc.Edit(ctx, 1, list[0].ID, models.GiveawayUpdate{EndsAt: &ends})
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.svc.ProcessDueTransitions(ctx, 1))
	list, err = f.svc.ListGiveaways(1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, tpl.ID, list[0].TemplateID)
}

func TestSchedulerStartStop(t *testing.T) {
	f := newFixture(t)
	scheduler := NewScheduler(f.svc, 5*time.Millisecond)
	scheduler.Start()
	time.Sleep(25 * time.Millisecond)
	scheduler.Stop()
}
