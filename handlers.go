package main

import (
	"context"
	"strings"
	"time"
)

// --- Callback Actions ---

// callbackKind enumerates every inline button action the bot emits.
// Callback data stays in the wire format "namespace:action" but is parsed
// into this tagged form so dispatch is an exhaustive switch rather than a
// string-keyed table.
type callbackKind int

const (
	cbUnknown callbackKind = iota
	cbQuickAbout
	cbQuickHelp
	cbQuickStory
	cbQuickMyStories
	cbQuickExport
	cbQuickReminder
	cbReminderSet
	cbReminderView
	cbReminderStop
	cbTimezone
	cbTimezoneManual
	cbCancelStory
	cbCancelReminder
	cbCancelFeedback
)

type callbackAction struct {
	kind callbackKind
	zone string // IANA zone, set for cbTimezone
}

func parseCallback(data string) callbackAction {
	ns, rest, ok := strings.Cut(data, ":")
	if !ok || rest == "" {
		return callbackAction{kind: cbUnknown}
	}
	switch ns {
	case "quick":
		switch rest {
		case "about":
			return callbackAction{kind: cbQuickAbout}
		case "help":
			return callbackAction{kind: cbQuickHelp}
		case "story":
			return callbackAction{kind: cbQuickStory}
		case "mystories":
			return callbackAction{kind: cbQuickMyStories}
		case "export":
			return callbackAction{kind: cbQuickExport}
		case "reminder":
			return callbackAction{kind: cbQuickReminder}
		}
	case "reminder":
		switch rest {
		case "set":
			return callbackAction{kind: cbReminderSet}
		case "view":
			return callbackAction{kind: cbReminderView}
		case "stop":
			return callbackAction{kind: cbReminderStop}
		}
	case "tz":
		if rest == "manual" {
			return callbackAction{kind: cbTimezoneManual}
		}
		return callbackAction{kind: cbTimezone, zone: rest}
	case "cancel":
		switch rest {
		case "story":
			return callbackAction{kind: cbCancelStory}
		case "reminder":
			return callbackAction{kind: cbCancelReminder}
		case "feedback":
			return callbackAction{kind: cbCancelFeedback}
		}
	}
	return callbackAction{kind: cbUnknown}
}

// --- Commands ---

func (b *Bot) handleCommand(ctx context.Context, user userMeta, text string) {
	command, _ := splitCommand(text)
	logInfoCtx(ctx, "command", "cmd", command, "userID", user.ID)

	switch command {
	case "/start":
		b.cmdStart(user)
	case "/help":
		b.sendHTML(user.ID, helpText(), nil)
	case "/about":
		b.cmdAbout(user)
	case "/story", "/moment":
		b.engine.StartStory(user)
	case "/mystories":
		b.cmdMyStories(user)
	case "/export":
		b.cmdExport(user)
	case "/reminders":
		b.cmdReminders(user)
	case "/setreminder":
		b.engine.StartReminder(user)
	case "/stopreminder":
		b.cmdStopReminder(user)
	case "/myreminder":
		b.cmdMyReminder(user)
	case "/feedback":
		b.engine.StartFeedback(user)
	case "/cancel":
		b.cmdCancel(user)
	default:
		b.sendHTML(user.ID, unknownCommandText(), nil)
	}
}

func (b *Bot) cmdStart(user userMeta) {
	kb := [][]tgInlineButton{
		{{Text: "📖 Learn More", CallbackData: "quick:about"}},
		{{Text: "📝 Record a Story", CallbackData: "quick:story"}},
		{{Text: "⏰ Set Daily Reminder", CallbackData: "quick:reminder"}},
	}
	b.sendHTML(user.ID, welcomeText(user.FirstName), kb)
}

func (b *Bot) cmdAbout(user userMeta) {
	kb := [][]tgInlineButton{
		{{Text: "📝 Record a Story", CallbackData: "quick:story"}},
		{{Text: "ℹ️ Help", CallbackData: "quick:help"}},
	}
	b.sendHTML(user.ID, aboutText(user.FirstName), kb)
}

func (b *Bot) cmdMyStories(user userMeta) {
	stories, err := b.store.ListStories(user.ID, 10)
	if err != nil {
		logError("list stories", "userID", user.ID, "error", err)
		b.sendHTML(user.ID, genericErrorText(), nil)
		return
	}
	if len(stories) == 0 {
		kb := [][]tgInlineButton{{{Text: "📝 Record Your First Story", CallbackData: "quick:story"}}}
		b.sendHTML(user.ID, noStoriesText(), kb)
		return
	}
	total, err := b.store.CountStories(user.ID)
	if err != nil {
		logError("count stories", "userID", user.ID, "error", err)
		total = len(stories)
	}
	kb := [][]tgInlineButton{
		{{Text: "📝 Record New Story", CallbackData: "quick:story"}},
		{{Text: "📥 Export Stories", CallbackData: "quick:export"}},
	}
	b.sendHTML(user.ID, storyListText(stories, total), kb)
}

func (b *Bot) cmdExport(user userMeta) {
	stories, err := b.store.ListStories(user.ID, 0)
	if err != nil {
		logError("export stories", "userID", user.ID, "error", err)
		b.sendHTML(user.ID, genericErrorText(), nil)
		return
	}
	if len(stories) == 0 {
		kb := [][]tgInlineButton{{{Text: "📝 Record Your First Story", CallbackData: "quick:story"}}}
		b.sendHTML(user.ID, noStoriesText(), kb)
		return
	}
	now := time.Now()
	content := buildExport(stories, now)
	err = b.SendDocument(user.ID, exportFilename(user.FirstName, now), exportCaptionText(len(stories)), []byte(content))
	if err != nil {
		logError("export delivery failed", "userID", user.ID, "error", err)
		b.sendHTML(user.ID, genericErrorText(), nil)
		return
	}
	logInfo("stories exported", "userID", user.ID, "count", len(stories))
}

func (b *Bot) cmdReminders(user userMeta) {
	pref, err := b.store.GetReminder(user.ID)
	if err != nil {
		logError("load reminder pref", "userID", user.ID, "error", err)
		b.sendHTML(user.ID, genericErrorText(), nil)
		return
	}
	b.sendHTML(user.ID, reminderMenuText(reminderStatusLine(pref, time.Now())), reminderMenuKeyboard())
}

func reminderMenuKeyboard() [][]tgInlineButton {
	return [][]tgInlineButton{
		{{Text: "⏰ Set Daily Reminder", CallbackData: "reminder:set"}},
		{{Text: "📊 View Reminder Status", CallbackData: "reminder:view"}},
		{{Text: "🔕 Stop Reminders", CallbackData: "reminder:stop"}},
	}
}

func (b *Bot) cmdStopReminder(user userMeta) {
	wasDisabled, err := b.store.DisableReminder(user.ID)
	if err != nil {
		logError("disable reminder", "userID", user.ID, "error", err)
		b.sendHTML(user.ID, genericErrorText(), nil)
		return
	}
	b.sendHTML(user.ID, reminderStoppedText(wasDisabled), nil)
}

func (b *Bot) cmdMyReminder(user userMeta) {
	pref, err := b.store.GetReminder(user.ID)
	if err != nil {
		logError("load reminder pref", "userID", user.ID, "error", err)
		b.sendHTML(user.ID, genericErrorText(), nil)
		return
	}
	b.sendHTML(user.ID, reminderStatusText(pref, time.Now()), nil)
}

func (b *Bot) cmdCancel(user userMeta) {
	kind, ok := b.engine.Cancel(user.ID)
	if !ok {
		b.sendHTML(user.ID, nothingToCancelText(), nil)
		return
	}
	b.sendHTML(user.ID, cancelledText(kind), nil)
}

func cancelledText(kind dialogKind) string {
	switch kind {
	case dialogReminder:
		return reminderCancelledText()
	case dialogFeedback:
		return feedbackCancelledText()
	default:
		return storyCancelledText()
	}
}

// --- Callbacks ---

func (b *Bot) handleCallback(ctx context.Context, cq *tgCallbackQuery) {
	user := userMeta{ID: cq.From.ID, Username: cq.From.Username, FirstName: cq.From.FirstName}
	action := parseCallback(cq.Data)
	logInfoCtx(ctx, "callback", "data", cq.Data, "userID", user.ID)

	chatID := user.ID
	messageID := 0
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}

	// edit rewrites the originating menu message, falling back to a fresh
	// message when the original is gone.
	edit := func(text string, kb [][]tgInlineButton) {
		if messageID != 0 {
			if err := b.editMessage(chatID, messageID, text, kb); err == nil {
				return
			}
		}
		b.sendHTML(chatID, text, kb)
	}

	b.answerCallback(cq.ID, "")

	switch action.kind {
	case cbQuickAbout:
		kb := [][]tgInlineButton{
			{{Text: "📝 Record a Story", CallbackData: "quick:story"}},
			{{Text: "ℹ️ Help", CallbackData: "quick:help"}},
		}
		edit(aboutText(user.FirstName), kb)

	case cbQuickHelp:
		edit(helpText(), nil)

	case cbQuickStory:
		b.engine.StartStory(user)

	case cbQuickMyStories:
		b.cmdMyStories(user)

	case cbQuickExport:
		b.cmdExport(user)

	case cbQuickReminder:
		pref, err := b.store.GetReminder(user.ID)
		if err != nil {
			logError("load reminder pref", "userID", user.ID, "error", err)
			edit(genericErrorText(), nil)
			return
		}
		edit(reminderMenuText(reminderStatusLine(pref, time.Now())), reminderMenuKeyboard())

	case cbReminderSet:
		b.engine.StartReminder(user)

	case cbReminderView:
		pref, err := b.store.GetReminder(user.ID)
		if err != nil {
			logError("load reminder pref", "userID", user.ID, "error", err)
			edit(genericErrorText(), nil)
			return
		}
		edit(reminderStatusText(pref, time.Now()), nil)

	case cbReminderStop:
		wasDisabled, err := b.store.DisableReminder(user.ID)
		if err != nil {
			logError("disable reminder", "userID", user.ID, "error", err)
			edit(genericErrorText(), nil)
			return
		}
		edit(reminderStoppedText(wasDisabled), nil)

	case cbTimezone:
		if !b.engine.ChooseTimezone(user, action.zone) {
			b.sendHTML(chatID, staleMenuText(), nil)
		}

	case cbTimezoneManual:
		if !b.engine.ChooseManualTimezone(user) {
			b.sendHTML(chatID, staleMenuText(), nil)
		}

	case cbCancelStory, cbCancelReminder, cbCancelFeedback:
		kind, ok := b.engine.Cancel(user.ID)
		if !ok {
			edit(nothingToCancelText(), nil)
			return
		}
		edit(cancelledText(kind), nil)

	case cbUnknown:
		logWarn("unknown callback data", "data", cq.Data, "userID", user.ID)
	}
}

func staleMenuText() string {
	return "⌛ That menu has expired. Use /setreminder to start again."
}
