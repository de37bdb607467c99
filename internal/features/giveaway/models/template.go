package models

import (
	"fmt"
	"time"
)

// RecurringTemplate is a reusable daily giveaway definition. The scheduler
// spawns a fresh Giveaway from it once per tenant-local day; templates never
// mutate the instances they previously spawned.
type RecurringTemplate struct {
	ID           string `json:"id"`
	ChannelID    int64  `json:"channel_id"`
	WinnersCount int    `json:"winners_count"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartTime    string `json:"start_time"` // HH:MM, tenant-local wall clock
	EndTime      string `json:"end_time"`   // HH:MM; rolls to next day when <= start
	Enabled      bool   `json:"enabled"`
}

// Validate checks the template definition without touching tenant state.
func (t *RecurringTemplate) Validate() error {
	if t.WinnersCount < 1 {
		return fmt.Errorf("winners count must be at least 1, got %d", t.WinnersCount)
	}
	if _, err := parseWallClock(t.StartTime); err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	if _, err := parseWallClock(t.EndTime); err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	return nil
}

// WindowFor computes the UTC start and end instants of the template's run for
// the local day containing now. An end wall clock at or before the start wall
// clock means the run crosses midnight into the next day.
func (t *RecurringTemplate) WindowFor(now time.Time, loc *time.Location) (start, end time.Time, err error) {
	startClock, err := parseWallClock(t.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endClock, err := parseWallClock(t.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	local := now.In(loc)
	year, month, day := local.Date()
	start = time.Date(year, month, day, startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end = time.Date(year, month, day, endClock.Hour(), endClock.Minute(), 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start.UTC(), end.UTC(), nil
}

func parseWallClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected HH:MM (24h), got %q", value)
	}
	return t, nil
}
