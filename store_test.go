package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock gives every write a distinct, increasing timestamp so
// newest-first ordering is deterministic.
func tickingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestStoryInsertCountList(t *testing.T) {
	st := testStore(t)
	st.now = tickingClock(time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC))

	count, err := st.CountStories(7)
	require.NoError(t, err)
	assert.Zero(t, count)

	id1, err := st.InsertStory(7, "anna", "Anna", "First moment.")
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	id2, err := st.InsertStory(7, "anna", "Anna", "Second moment.")
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	_, err = st.InsertStory(8, "ben", "Ben", "Someone else's moment.")
	require.NoError(t, err)

	count, err = st.CountStories(7)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stories, err := st.ListStories(7, 0)
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "Second moment.", stories[0].StoryText, "list is newest-first")
	assert.Equal(t, "First moment.", stories[1].StoryText)
	assert.True(t, stories[0].CreatedAt.After(stories[1].CreatedAt))

	limited, err := st.ListStories(7, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Second moment.", limited[0].StoryText)
}

func TestLatestStory(t *testing.T) {
	st := testStore(t)
	st.now = tickingClock(time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC))

	latest, err := st.LatestStory(7)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = st.InsertStory(7, "anna", "Anna", "Older.")
	require.NoError(t, err)
	_, err = st.InsertStory(7, "anna", "Anna", "Newer.")
	require.NoError(t, err)

	latest, err = st.LatestStory(7)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Newer.", latest.StoryText)
	assert.Equal(t, "Anna", latest.FirstName)
}

func TestUpsertReminderOverwrites(t *testing.T) {
	st := testStore(t)

	require.NoError(t, st.UpsertReminder(7, "08:00", "Europe/London"))
	pref, err := st.GetReminder(7)
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, "08:00", pref.ReminderTime)
	assert.Equal(t, "Europe/London", pref.Timezone)
	assert.True(t, pref.Enabled)

	// Overwrite re-enables and replaces both fields; still one row.
	changed, err := st.DisableReminder(7)
	require.NoError(t, err)
	require.True(t, changed)

	require.NoError(t, st.UpsertReminder(7, "23:30", "Asia/Tokyo"))
	pref, err = st.GetReminder(7)
	require.NoError(t, err)
	require.NotNil(t, pref)
	assert.Equal(t, "23:30", pref.ReminderTime)
	assert.Equal(t, "Asia/Tokyo", pref.Timezone)
	assert.True(t, pref.Enabled, "upsert forces enabled back on")

	var rows int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(*) FROM reminder_preferences WHERE user_id = 7`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestDisableReminderIdempotent(t *testing.T) {
	st := testStore(t)

	changed, err := st.DisableReminder(7)
	require.NoError(t, err)
	assert.False(t, changed, "no row yet")

	require.NoError(t, st.UpsertReminder(7, "08:00", "UTC"))

	changed, err = st.DisableReminder(7)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = st.DisableReminder(7)
	require.NoError(t, err)
	assert.False(t, changed, "second disable reports no change")

	pref, err := st.GetReminder(7)
	require.NoError(t, err)
	require.NotNil(t, pref, "row is retained for re-enable")
	assert.False(t, pref.Enabled)
}

func TestGetReminderAbsent(t *testing.T) {
	st := testStore(t)
	pref, err := st.GetReminder(404)
	require.NoError(t, err)
	assert.Nil(t, pref)
}

func TestListEnabledRemindersOrdered(t *testing.T) {
	st := testStore(t)

	require.NoError(t, st.UpsertReminder(1, "23:00", "UTC"))
	require.NoError(t, st.UpsertReminder(2, "01:15", "UTC"))
	require.NoError(t, st.UpsertReminder(3, "12:00", "UTC"))
	require.NoError(t, st.UpsertReminder(4, "06:30", "UTC"))
	_, err := st.DisableReminder(4)
	require.NoError(t, err)

	prefs, err := st.ListEnabledReminders()
	require.NoError(t, err)
	require.Len(t, prefs, 3)
	assert.Equal(t, []string{"01:15", "12:00", "23:00"},
		[]string{prefs[0].ReminderTime, prefs[1].ReminderTime, prefs[2].ReminderTime})
}

func TestInsertFeedback(t *testing.T) {
	st := testStore(t)

	id, err := st.InsertFeedback(7, "anna", "Anna", "More timezones in the picker, please.")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	var text string
	require.NoError(t, st.db.QueryRow(`SELECT feedback_text FROM feedback WHERE id = ?`, id).Scan(&text))
	assert.Equal(t, "More timezones in the picker, please.", text)
}

func TestStoriesAreImmutable(t *testing.T) {
	// The store exposes no update or delete for stories; this pins the
	// surface so one cannot be added casually.
	st := testStore(t)
	id, err := st.InsertStory(7, "anna", "Anna", "Set in stone.")
	require.NoError(t, err)

	stories, err := st.ListStories(7, 0)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, id, stories[0].ID)
	assert.Equal(t, "Set in stone.", stories[0].StoryText)
}
