package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithTestDeadline(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func testScheduler(t *testing.T, st *Store) (*ReminderScheduler, *fakeSender) {
	t.Helper()
	fs := &fakeSender{failFor: make(map[int64]bool)}
	rs := newReminderScheduler(st, newDispatcher(fs), &Config{})
	return rs, fs
}

func utcTick(hour, minute int) time.Time {
	return time.Date(2026, 8, 30, hour, minute, 7, 0, time.UTC)
}

func TestTickMatchesExactMinuteOnly(t *testing.T) {
	st := testStore(t)
	rs, fs := testScheduler(t, st)

	require.NoError(t, st.UpsertReminder(1, "10:00", "Europe/London"))
	require.NoError(t, st.UpsertReminder(2, "10:01", "Europe/London"))

	rs.tick(utcTick(10, 0))
	assert.Len(t, fs.messagesFor(1), 1, "10:00 reminder fires at the 10:00 tick")
	assert.Empty(t, fs.messagesFor(2), "10:01 reminder must not fire at 10:00")

	rs.tick(utcTick(10, 1))
	assert.Len(t, fs.messagesFor(1), 1)
	assert.Len(t, fs.messagesFor(2), 1)

	rs.tick(utcTick(10, 2))
	assert.Len(t, fs.messagesFor(1), 1)
	assert.Len(t, fs.messagesFor(2), 1)
}

func TestTickNeighboringMinutesDoNotMatch(t *testing.T) {
	st := testStore(t)
	rs, fs := testScheduler(t, st)

	require.NoError(t, st.UpsertReminder(1, "14:30", "UTC"))

	rs.tick(utcTick(14, 29))
	rs.tick(utcTick(14, 31))
	assert.Empty(t, fs.sent)

	rs.tick(utcTick(14, 30))
	assert.Len(t, fs.messagesFor(1), 1)
}

func TestTickSkipsDisabledPreferences(t *testing.T) {
	st := testStore(t)
	rs, fs := testScheduler(t, st)

	require.NoError(t, st.UpsertReminder(1, "10:00", "UTC"))
	changed, err := st.DisableReminder(1)
	require.NoError(t, err)
	require.True(t, changed)

	rs.tick(utcTick(10, 0))
	assert.Empty(t, fs.sent)
}

func TestTickEnrichesNameFromLatestStory(t *testing.T) {
	st := testStore(t)
	rs, fs := testScheduler(t, st)

	_, err := st.InsertStory(1, "anna", "Anna", "Watched the sunrise from the fire escape.")
	require.NoError(t, err)
	require.NoError(t, st.UpsertReminder(1, "10:00", "Europe/Berlin"))
	require.NoError(t, st.UpsertReminder(2, "10:00", "Europe/Berlin"))

	rs.tick(utcTick(10, 0))

	msgs1 := fs.messagesFor(1)
	require.Len(t, msgs1, 1)
	assert.Contains(t, msgs1[0].text, "Hey Anna!")

	msgs2 := fs.messagesFor(2)
	require.Len(t, msgs2, 1)
	assert.Contains(t, msgs2[0].text, "Hey there!", "no story means the generic greeting")
}

func TestTickDeliveryFailureDoesNotAbortPass(t *testing.T) {
	st := testStore(t)
	rs, fs := testScheduler(t, st)

	require.NoError(t, st.UpsertReminder(1, "10:00", "UTC"))
	require.NoError(t, st.UpsertReminder(2, "10:00", "UTC"))
	fs.failFor[1] = true

	rs.tick(utcTick(10, 0))

	assert.Empty(t, fs.messagesFor(1))
	assert.Len(t, fs.messagesFor(2), 1, "one failed recipient must not block the rest")
}

func TestTickCarriesCaptureQuickAction(t *testing.T) {
	st := testStore(t)
	rs, fs := testScheduler(t, st)

	require.NoError(t, st.UpsertReminder(1, "10:00", "UTC"))
	rs.tick(utcTick(10, 0))

	msgs := fs.messagesFor(1)
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].keyboard, 1)
	assert.Equal(t, "quick:story", msgs[0].keyboard[0][0].CallbackData)
}

func TestSchedulerStartStop(t *testing.T) {
	st := testStore(t)
	fs := &fakeSender{failFor: make(map[int64]bool)}
	cfg := &Config{Reminders: ReminderConfig{CheckInterval: "10ms", StartupDelay: "0s"}}
	rs := newReminderScheduler(st, newDispatcher(fs), cfg)

	ctx, cancel := contextWithTestDeadline(t)
	defer cancel()
	rs.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	rs.Stop()
}
