package main

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// --- Dialog Types ---

type dialogKind int

const (
	dialogStory dialogKind = iota + 1
	dialogReminder
	dialogFeedback
)

func (k dialogKind) String() string {
	switch k {
	case dialogStory:
		return "story"
	case dialogReminder:
		return "reminder"
	case dialogFeedback:
		return "feedback"
	default:
		return "none"
	}
}

type dialogState int

const (
	stateAwaitStory dialogState = iota + 1
	stateAwaitTimezone
	stateAwaitTime
	stateAwaitFeedback
)

// reminderDraft is the typed scratch data for the set-reminder dialog,
// filled in progressively as steps complete.
type reminderDraft struct {
	timezone string // IANA zone name, set after the timezone step
}

// session is the live per-user state of one in-progress dialog.
type session struct {
	kind         dialogKind
	state        dialogState
	draft        reminderDraft
	startedAt    time.Time
	lastActivity time.Time
}

// userMeta identifies the sender of an inbound event.
type userMeta struct {
	ID        int64
	Username  string
	FirstName string
}

// --- Engine ---

// Engine runs at most one guided dialog per user at a time. Events for the
// same user are serialized through a per-user mutex; starting a new dialog
// while one is active replaces the old session. Sessions expire after the
// configured inactivity window, checked lazily on each event and by a
// background sweep.
type Engine struct {
	store   *Store
	sender  Sender
	timeout time.Duration
	capture CaptureConfig
	now     func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
	userMu   map[int64]*sync.Mutex
}

func newEngine(store *Store, sender Sender, cfg *Config) *Engine {
	return &Engine{
		store:    store,
		sender:   sender,
		timeout:  cfg.Conversation.timeoutOrDefault(),
		capture:  cfg.Capture,
		now:      time.Now,
		sessions: make(map[int64]*session),
		userMu:   make(map[int64]*sync.Mutex),
	}
}

// userLock returns the per-user mutex, creating it on first use. No two
// events for the same user are processed interleaved.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	mu, ok := e.userMu[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.userMu[userID] = mu
	}
	return mu
}

// activeSession returns the user's session if one exists and has not timed
// out. A stale session is discarded on the spot.
func (e *Engine) activeSession(userID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[userID]
	if !ok {
		return nil
	}
	if e.now().Sub(s.lastActivity) >= e.timeout {
		delete(e.sessions, userID)
		logInfo("dialog timed out", "userID", userID, "dialog", s.kind.String())
		return nil
	}
	return s
}

func (e *Engine) putSession(userID int64, s *session) {
	e.mu.Lock()
	e.sessions[userID] = s
	e.mu.Unlock()
}

func (e *Engine) dropSession(userID int64) {
	e.mu.Lock()
	delete(e.sessions, userID)
	e.mu.Unlock()
}

// Active reports whether the user has a live, non-expired dialog.
func (e *Engine) Active(userID int64) bool {
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	return e.activeSession(userID) != nil
}

func (e *Engine) send(userID int64, text string) {
	if err := e.sender.SendText(userID, text); err != nil {
		logWarn("dialog send failed", "userID", userID, "error", err)
	}
}

func (e *Engine) sendKeyboard(userID int64, text string, kb [][]tgInlineButton) {
	if err := e.sender.SendKeyboard(userID, text, kb); err != nil {
		logWarn("dialog send failed", "userID", userID, "error", err)
	}
}

// --- Entry Triggers ---

// start replaces any existing session with a fresh one. The replaced dialog
// gets no farewell; the new dialog's entry prompt is the only notice.
func (e *Engine) start(userID int64, kind dialogKind, state dialogState) {
	now := e.now()
	if old := e.activeSession(userID); old != nil && old.kind != kind {
		logInfo("dialog replaced", "userID", userID, "old", old.kind.String(), "new", kind.String())
	}
	e.putSession(userID, &session{kind: kind, state: state, startedAt: now, lastActivity: now})
}

// StartStory begins the capture-story dialog.
func (e *Engine) StartStory(user userMeta) {
	mu := e.userLock(user.ID)
	mu.Lock()
	defer mu.Unlock()

	e.start(user.ID, dialogStory, stateAwaitStory)
	kb := [][]tgInlineButton{{{Text: "❌ Cancel", CallbackData: "cancel:story"}}}
	e.sendKeyboard(user.ID, storyPromptText(user.FirstName), kb)
}

// StartReminder begins the set-reminder dialog with the timezone picker.
func (e *Engine) StartReminder(user userMeta) {
	mu := e.userLock(user.ID)
	mu.Lock()
	defer mu.Unlock()

	pref, err := e.store.GetReminder(user.ID)
	if err != nil {
		logError("load reminder pref", "userID", user.ID, "error", err)
	}
	e.start(user.ID, dialogReminder, stateAwaitTimezone)
	e.sendKeyboard(user.ID, timezonePromptText(user.FirstName, pref, e.now()), timezoneKeyboard())
}

// StartFeedback begins the feedback dialog.
func (e *Engine) StartFeedback(user userMeta) {
	mu := e.userLock(user.ID)
	mu.Lock()
	defer mu.Unlock()

	e.start(user.ID, dialogFeedback, stateAwaitFeedback)
	kb := [][]tgInlineButton{{{Text: "❌ Cancel", CallbackData: "cancel:feedback"}}}
	e.sendKeyboard(user.ID, feedbackPromptText(user.FirstName), kb)
}

// timezoneKeyboard lays out the common-zone picker plus manual entry and
// cancel rows.
func timezoneKeyboard() [][]tgInlineButton {
	var kb [][]tgInlineButton
	for i := 0; i+1 < len(commonTimezones); i += 2 {
		kb = append(kb, []tgInlineButton{
			{Text: commonTimezones[i].Label, CallbackData: "tz:" + commonTimezones[i].Zone},
			{Text: commonTimezones[i+1].Label, CallbackData: "tz:" + commonTimezones[i+1].Zone},
		})
	}
	if len(commonTimezones)%2 != 0 {
		last := commonTimezones[len(commonTimezones)-1]
		kb = append(kb, []tgInlineButton{{Text: last.Label, CallbackData: "tz:" + last.Zone}})
	}
	kb = append(kb,
		[]tgInlineButton{{Text: "🌍 Other (type manually)", CallbackData: "tz:manual"}},
		[]tgInlineButton{{Text: "❌ Cancel", CallbackData: "cancel:reminder"}},
	)
	return kb
}

// --- Control Input ---

// Cancel ends the user's active dialog, if any, and reports which kind was
// cancelled.
func (e *Engine) Cancel(userID int64) (dialogKind, bool) {
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	s := e.activeSession(userID)
	if s == nil {
		return 0, false
	}
	e.dropSession(userID)
	logInfo("dialog cancelled", "userID", userID, "dialog", s.kind.String())
	return s.kind, true
}

// ChooseTimezone handles a timezone picker button press. It returns false
// when no reminder dialog is awaiting a timezone (stale button).
func (e *Engine) ChooseTimezone(user userMeta, zone string) bool {
	mu := e.userLock(user.ID)
	mu.Lock()
	defer mu.Unlock()

	s := e.activeSession(user.ID)
	if s == nil || s.kind != dialogReminder || s.state != stateAwaitTimezone {
		return false
	}
	loc, err := loadTimezone(zone)
	if err != nil {
		// Picker zones are fixed; a failure here means a stale or forged
		// callback. Re-prompt without advancing.
		logWarn("picker timezone rejected", "userID", user.ID, "zone", zone)
		e.send(user.ID, badTimezoneText(zone))
		s.lastActivity = e.now()
		return true
	}
	s.draft.timezone = zone
	s.state = stateAwaitTime
	s.lastActivity = e.now()
	e.send(user.ID, timezoneAcceptedText(zone, loc, e.now()))
	return true
}

// ChooseManualTimezone handles the "Other" picker option: same step, free
// text expected next.
func (e *Engine) ChooseManualTimezone(user userMeta) bool {
	mu := e.userLock(user.ID)
	mu.Lock()
	defer mu.Unlock()

	s := e.activeSession(user.ID)
	if s == nil || s.kind != dialogReminder || s.state != stateAwaitTimezone {
		return false
	}
	s.lastActivity = e.now()
	e.send(user.ID, manualTimezonePromptText())
	return true
}

// --- Text Input ---

// HandleText feeds a plain text message into the user's active dialog. It
// returns false when no dialog is active (the caller falls through to the
// stateless responders).
func (e *Engine) HandleText(user userMeta, text string) bool {
	mu := e.userLock(user.ID)
	mu.Lock()
	defer mu.Unlock()

	s := e.activeSession(user.ID)
	if s == nil {
		return false
	}

	switch s.state {
	case stateAwaitStory:
		e.stepStory(user, s, text)
	case stateAwaitTimezone:
		e.stepTimezone(user, s, text)
	case stateAwaitTime:
		e.stepTime(user, s, text)
	case stateAwaitFeedback:
		e.stepFeedback(user, s, text)
	default:
		e.dropSession(user.ID)
		return false
	}
	return true
}

// stepStory validates the story text and completes the capture dialog.
func (e *Engine) stepStory(user userMeta, s *session, text string) {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		s.lastActivity = e.now()
		e.send(user.ID, storyEmptyText())
		return
	case e.capture.MinLength > 0 && n < e.capture.MinLength:
		s.lastActivity = e.now()
		e.send(user.ID, storyTooShortText())
		return
	case e.capture.MaxLength > 0 && n > e.capture.MaxLength:
		s.lastActivity = e.now()
		e.send(user.ID, storyTooLongText(e.capture.MaxLength))
		return
	}

	id, err := e.store.InsertStory(user.ID, user.Username, user.FirstName, text)
	if err != nil {
		logError("save story", "userID", user.ID, "error", err)
		e.dropSession(user.ID)
		e.send(user.ID, genericErrorText())
		return
	}
	total, err := e.store.CountStories(user.ID)
	if err != nil {
		logError("count stories", "userID", user.ID, "error", err)
		total = 1
	}
	e.dropSession(user.ID)

	kb := [][]tgInlineButton{{{Text: "📚 View My Stories", CallbackData: "quick:mystories"}}}
	e.sendKeyboard(user.ID, storySavedText(total, len(strings.Fields(text))), kb)
	logInfo("story saved", "storyID", id, "userID", user.ID, "total", total)
}

// stepTimezone validates free-text timezone input.
func (e *Engine) stepTimezone(user userMeta, s *session, text string) {
	zone := strings.TrimSpace(text)
	loc, err := loadTimezone(zone)
	if err != nil {
		s.lastActivity = e.now()
		e.send(user.ID, badTimezoneText(zone))
		return
	}
	s.draft.timezone = zone
	s.state = stateAwaitTime
	s.lastActivity = e.now()
	e.send(user.ID, timezoneAcceptedText(zone, loc, e.now()))
}

// stepTime validates the HH:MM input, converts the user's local choice to
// UTC anchored on today in their zone, and persists the preference.
func (e *Engine) stepTime(user userMeta, s *session, text string) {
	hour, minute, ok := parseClock(text)
	if !ok {
		s.lastActivity = e.now()
		e.send(user.ID, badTimeText())
		return
	}

	loc, err := loadTimezone(s.draft.timezone)
	if err != nil {
		// Zone was validated when the draft was filled; losing it here means
		// the zone database changed underneath us.
		logError("draft timezone unresolvable", "userID", user.ID, "zone", s.draft.timezone, "error", err)
		e.dropSession(user.ID)
		e.send(user.ID, genericErrorText())
		return
	}
	utcTime := localClockToUTC(hour, minute, loc, e.now())
	if err := e.store.UpsertReminder(user.ID, utcTime, s.draft.timezone); err != nil {
		logError("save reminder", "userID", user.ID, "error", err)
		e.dropSession(user.ID)
		e.send(user.ID, genericErrorText())
		return
	}
	e.dropSession(user.ID)
	e.send(user.ID, reminderSetText(formatClock(hour, minute), s.draft.timezone))
	logInfo("reminder set", "userID", user.ID, "local", formatClock(hour, minute),
		"timezone", s.draft.timezone, "utc", utcTime)
}

// stepFeedback saves the feedback text and completes the dialog.
func (e *Engine) stepFeedback(user userMeta, s *session, text string) {
	if strings.TrimSpace(text) == "" {
		s.lastActivity = e.now()
		e.send(user.ID, feedbackEmptyText())
		return
	}
	id, err := e.store.InsertFeedback(user.ID, user.Username, user.FirstName, text)
	if err != nil {
		logError("save feedback", "userID", user.ID, "error", err)
		e.dropSession(user.ID)
		e.send(user.ID, genericErrorText())
		return
	}
	e.dropSession(user.ID)
	e.send(user.ID, feedbackThanksText())
	logInfo("feedback saved", "feedbackID", id, "userID", user.ID)
}

// --- Timeout Sweep ---

// StartSweeper expires stale sessions once a minute until ctx is done.
// Expiry found by the sweep sends a courtesy note; lazy expiry on the next
// event stays silent.
func (e *Engine) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, userID := range e.sweep() {
					e.send(userID, sessionExpiredText())
				}
			}
		}
	}()
}

// sweep removes all timed-out sessions and returns the affected user IDs.
func (e *Engine) sweep() []int64 {
	now := e.now()
	e.mu.Lock()
	defer e.mu.Unlock()
	var expired []int64
	for userID, s := range e.sessions {
		if now.Sub(s.lastActivity) >= e.timeout {
			delete(e.sessions, userID)
			expired = append(expired, userID)
			logInfo("dialog swept", "userID", userID, "dialog", s.kind.String())
		}
	}
	return expired
}
