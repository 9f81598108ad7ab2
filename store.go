package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// --- Row Types ---

// Story is one persisted journal entry. Rows are append-only and never
// mutated after insert.
type Story struct {
	ID        int64
	UserID    int64
	Username  string
	FirstName string
	StoryText string
	CreatedAt time.Time
}

// ReminderPref is a user's stored daily reminder configuration. ReminderTime
// is an "HH:MM" string in UTC; Timezone is the IANA zone the user chose.
type ReminderPref struct {
	UserID       int64
	ReminderTime string
	Timezone     string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Feedback is one user-submitted feedback entry. Write-only from the
// product's perspective.
type Feedback struct {
	ID           int64
	UserID       int64
	Username     string
	FirstName    string
	FeedbackText string
	CreatedAt    time.Time
}

// --- Store ---

// Store wraps the SQLite database holding stories, reminder preferences and
// feedback. Every write is scoped to a single user row, so the store is safe
// for concurrent use across users.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS stories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  username TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  story_text TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stories_user ON stories(user_id);
CREATE INDEX IF NOT EXISTS idx_stories_created ON stories(created_at);

CREATE TABLE IF NOT EXISTS reminder_preferences (
  user_id INTEGER PRIMARY KEY,
  reminder_time TEXT NOT NULL,
  timezone TEXT NOT NULL DEFAULT 'UTC',
  enabled INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL,
  username TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  feedback_text TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`

// openStore opens (creating if needed) the SQLite database at path.
func openStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// modernc/sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent handler goroutines.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database liveness for the health endpoint.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func parseStoredTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- Stories ---

// InsertStory appends a story and returns its ID. created_at is assigned
// server-side at insert.
func (s *Store) InsertStory(userID int64, username, firstName, text string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO stories (user_id, username, first_name, story_text, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, username, firstName, text, s.timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert story: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert story id: %w", err)
	}
	return id, nil
}

// CountStories returns the total number of stories a user has captured.
func (s *Store) CountStories(userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM stories WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stories: %w", err)
	}
	return n, nil
}

// ListStories returns a user's stories newest-first. limit <= 0 returns all.
func (s *Store) ListStories(userID int64, limit int) ([]Story, error) {
	q := `SELECT id, user_id, username, first_name, story_text, created_at
	      FROM stories WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	defer rows.Close()

	var out []Story
	for rows.Next() {
		var st Story
		var created string
		if err := rows.Scan(&st.ID, &st.UserID, &st.Username, &st.FirstName, &st.StoryText, &created); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		st.CreatedAt = parseStoredTime(created)
		out = append(out, st)
	}
	return out, rows.Err()
}

// LatestStory returns the most recent story for a user, or nil when the user
// has none.
func (s *Store) LatestStory(userID int64) (*Story, error) {
	stories, err := s.ListStories(userID, 1)
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, nil
	}
	return &stories[0], nil
}

// --- Reminder Preferences ---

// UpsertReminder inserts or overwrites a user's reminder row, forcing
// enabled back on. utcTime is the "HH:MM" UTC equivalent of the user's local
// choice; timezone is kept for display.
func (s *Store) UpsertReminder(userID int64, utcTime, timezone string) error {
	ts := s.timestamp()
	_, err := s.db.Exec(
		`INSERT INTO reminder_preferences (user_id, reminder_time, timezone, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   reminder_time = excluded.reminder_time,
		   timezone = excluded.timezone,
		   enabled = 1,
		   updated_at = excluded.updated_at`,
		userID, utcTime, timezone, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	return nil
}

// DisableReminder soft-deletes a reminder. It reports whether a change
// occurred, so repeated calls return true then false.
func (s *Store) DisableReminder(userID int64) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE reminder_preferences SET enabled = 0, updated_at = ? WHERE user_id = ? AND enabled = 1`,
		s.timestamp(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("disable reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("disable reminder: %w", err)
	}
	return n > 0, nil
}

// GetReminder returns a user's reminder row, or nil when none exists.
func (s *Store) GetReminder(userID int64) (*ReminderPref, error) {
	row := s.db.QueryRow(
		`SELECT user_id, reminder_time, timezone, enabled, created_at, updated_at
		 FROM reminder_preferences WHERE user_id = ?`, userID)
	pref, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return pref, nil
}

// ListEnabledReminders returns all enabled reminder rows ordered by time.
func (s *Store) ListEnabledReminders() ([]ReminderPref, error) {
	rows, err := s.db.Query(
		`SELECT user_id, reminder_time, timezone, enabled, created_at, updated_at
		 FROM reminder_preferences WHERE enabled = 1 ORDER BY reminder_time, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []ReminderPref
	for rows.Next() {
		pref, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, *pref)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*ReminderPref, error) {
	var pref ReminderPref
	var enabled int
	var created, updated string
	if err := row.Scan(&pref.UserID, &pref.ReminderTime, &pref.Timezone, &enabled, &created, &updated); err != nil {
		return nil, err
	}
	pref.Enabled = enabled != 0
	pref.CreatedAt = parseStoredTime(created)
	pref.UpdatedAt = parseStoredTime(updated)
	return &pref, nil
}

// --- Feedback ---

// InsertFeedback appends a feedback entry and returns its ID.
func (s *Store) InsertFeedback(userID int64, username, firstName, text string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO feedback (user_id, username, first_name, feedback_text, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, username, firstName, text, s.timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert feedback id: %w", err)
	}
	return id, nil
}
