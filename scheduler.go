package main

import (
	"context"
	"sync"
	"time"
)

// --- Reminder Scheduler ---

// ReminderScheduler fires daily reminders. Once per tick (default every
// 60 seconds, after a 10 second startup delay) it compares the current UTC
// HH:MM against every enabled preference and dispatches one notification per
// exact match. A missed tick skips that day's reminder; there is no
// catch-up.
type ReminderScheduler struct {
	store    *Store
	dispatch *Dispatcher
	interval time.Duration
	delay    time.Duration
	now      func() time.Time

	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func newReminderScheduler(store *Store, dispatch *Dispatcher, cfg *Config) *ReminderScheduler {
	return &ReminderScheduler{
		store:    store,
		dispatch: dispatch,
		interval: cfg.Reminders.checkIntervalOrDefault(),
		delay:    cfg.Reminders.startupDelayOrDefault(),
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic check goroutine.
func (rs *ReminderScheduler) Start(ctx context.Context) {
	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()

		select {
		case <-ctx.Done():
			return
		case <-rs.stopCh:
			return
		case <-time.After(rs.delay):
		}

		ticker := time.NewTicker(rs.interval)
		defer ticker.Stop()

		logInfo("reminder scheduler started", "interval", rs.interval.String(), "startupDelay", rs.delay.String())

		for {
			select {
			case <-ctx.Done():
				return
			case <-rs.stopCh:
				return
			case <-ticker.C:
				rs.tick(rs.now())
			}
		}
	}()
}

// Stop halts the scheduler and waits for the loop to exit.
func (rs *ReminderScheduler) Stop() {
	rs.once.Do(func() { close(rs.stopCh) })
	rs.wg.Wait()
}

// tick runs one scheduler pass at the given instant. Matching is
// minute-granularity string equality on the stored UTC HH:MM value, so each
// enabled user matches at most once per calendar day.
func (rs *ReminderScheduler) tick(now time.Time) {
	clock := now.UTC().Format("15:04")

	prefs, err := rs.store.ListEnabledReminders()
	if err != nil {
		logError("scheduler read preferences", "error", err)
		return
	}

	for _, pref := range prefs {
		if pref.ReminderTime != clock {
			continue
		}
		rs.dispatch.SendReminder(pref.UserID, rs.displayName(pref.UserID))
	}
}

// displayName enriches the nudge with the user's first name from their most
// recent story. Best-effort; absence falls back to a generic greeting.
func (rs *ReminderScheduler) displayName(userID int64) string {
	st, err := rs.store.LatestStory(userID)
	if err != nil {
		logWarn("scheduler name lookup failed", "userID", userID, "error", err)
		return ""
	}
	if st == nil {
		return ""
	}
	return st.FirstName
}
