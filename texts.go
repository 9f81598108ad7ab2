package main

import (
	"fmt"
	"strings"
	"time"
)

// User-facing copy. Messages use Telegram HTML parse mode.

// --- Basic Commands ---

func welcomeText(firstName string) string {
	return fmt.Sprintf(
		"Hello %s! 👋\n\n"+
			"Welcome to <b>Moments Bot</b> - your daily companion for capturing life's storyworthy moments!\n\n",
		firstName)
}

func helpText() string {
	return "🤖 <b>Bot Help</b>\n\n" +
		"<b>Getting Started:</b>\n" +
		"• /start - Welcome message\n" +
		"• /help - Show this help message\n" +
		"• /about - Learn about Homework for Life\n\n" +
		"<b>Capture Your Stories:</b>\n" +
		"• /story - Record today's storyworthy moment\n" +
		"• /mystories - View your saved stories\n\n" +
		"<b>Reminders:</b>\n" +
		"• /reminders - ⏰ Manage daily reminders\n\n" +
		"<b>Additional:</b>\n" +
		"• /export - Export all your stories as a text file\n" +
		"• /feedback - Share your thoughts about the bot\n\n" +
		"💡 Use /story daily to capture moments worth remembering!"
}

func aboutText(firstName string) string {
	return fmt.Sprintf(
		"📖 <b>About Homework for Life</b>\n\n"+
			"Hey %s!\n\n"+
			"This bot is built around Matthew Dicks' <i>Homework for Life</i>: "+
			"every day, ask yourself one question —\n\n"+
			"<i>If you had to tell a story from today — a five-minute story onstage "+
			"about something that took place over the course of this day — what would it be?</i>\n\n"+
			"The moment doesn't have to be dramatic. A conversation, a small kindness, "+
			"a realization. Writing down one or two sentences a day trains you to notice "+
			"the stories already in your life.\n\n"+
			"<i>\"When you start looking for story-worthy moments in your life, "+
			"you start to see them everywhere.\"</i> — Matthew Dicks\n\n"+
			"Use /story to capture today's moment, and /reminders to get a daily nudge.",
		firstName)
}

func unknownCommandText() string {
	return "🤔 I don't recognize that command. Use /help to see all available commands!"
}

func fallbackText(firstName string) string {
	return fmt.Sprintf(
		"Hi %s! 😊 Use /story to capture today's storyworthy moment, or /help to see what I can do.",
		firstName)
}

func genericErrorText() string {
	return "😅 Oops! Something went wrong. Please try again or use /help if you need assistance."
}

// --- Story Dialog ---

func storyPromptText(firstName string) string {
	return fmt.Sprintf(
		"Hey %s! 👋\n\n"+
			"Here's your homework for today:\n\n"+
			"<i>If you had to tell a story from today — a five-minute story onstage "+
			"about something that took place over the course of this day — what would it be?</i>\n\n"+
			"It doesn't need to be spectacular. It doesn't need to be life-changing. "+
			"It just needs to be a moment that mattered to you.\n\n"+
			"Keep it to 1-2 sentences. What's your moment? 📝",
		firstName)
}

func storyEmptyText() string {
	return "🤔 That message looks empty. Tell me about your moment in a sentence or two, or use /cancel to stop."
}

func storyTooShortText() string {
	return "🤔 That seems a bit short for a story-worthy moment. " +
		"Could you share a bit more detail? I'd love to hear more about it!"
}

func storyTooLongText(maxLen int) string {
	return fmt.Sprintf(
		"📝 That's a wonderful, detailed moment! However, let's keep it under %d characters. "+
			"Could you share a more concise version?", maxLen)
}

func storySavedText(total, wordCount int) string {
	plural := "s"
	if total == 1 {
		plural = ""
	}
	tip := ""
	if wordCount < 5 {
		tip = "\n\n💡 <i>Tip: Try adding a bit more detail next time!</i>"
	} else if wordCount > 100 {
		tip = "\n\n💡 <i>Tip: Remember, brevity is key! Aim for 1-2 sentences.</i>"
	}
	return fmt.Sprintf(
		"✨ Beautiful! Story saved.\n\n"+
			"That's <b>%d</b> moment%s captured so far.\n\n"+
			"<i>\"When you start looking for story-worthy moments in your life, "+
			"you start to see them everywhere.\"</i>%s\n\n"+
			"See you tomorrow! 🌟",
		total, plural, tip)
}

func storyCancelledText() string {
	return "No worries! Your story wasn't saved. Come back with /story whenever you're ready! 👋"
}

func noStoriesText() string {
	return "📭 You haven't saved any stories yet!\n\nUse /story to capture your first moment."
}

func storyListText(stories []Story, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 <b>Your Stories</b> (showing last %d of %d):\n\n", len(stories), total)
	for i, st := range stories {
		date := st.CreatedAt.Format("2006-01-02")
		preview := st.StoryText
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		fmt.Fprintf(&sb, "<b>%d. %s</b>\n%s\n\n", i+1, date, preview)
	}
	sb.WriteString("💡 <i>Tip: Use /export to download all your stories as a text file.</i>")
	return sb.String()
}

// --- Reminder Dialog ---

func reminderMenuText(status string) string {
	return "⏰ <b>Reminder Settings</b>\n\n" +
		"Set up daily reminders to capture your storyworthy moments." + status + "\n\n" +
		"Choose an option below:"
}

func reminderStatusLine(pref *ReminderPref, now time.Time) string {
	if pref == nil || !pref.Enabled {
		return "\n\n🔕 No active reminder set"
	}
	if loc, err := loadTimezone(pref.Timezone); err == nil {
		if local, err := utcClockToLocal(pref.ReminderTime, loc, now); err == nil {
			return fmt.Sprintf("\n\n✅ <b>Active Reminder:</b> %s (%s)", local, pref.Timezone)
		}
	}
	return fmt.Sprintf("\n\n✅ <b>Active Reminder:</b> %s UTC", pref.ReminderTime)
}

func timezonePromptText(firstName string, pref *ReminderPref, now time.Time) string {
	existing := ""
	if pref != nil && pref.Enabled {
		local := pref.ReminderTime + " UTC"
		if loc, err := loadTimezone(pref.Timezone); err == nil {
			if l, err := utcClockToLocal(pref.ReminderTime, loc, now); err == nil {
				local = l
			}
		}
		existing = fmt.Sprintf(
			"\n\nYou currently have a reminder set for <b>%s</b> in <b>%s</b> timezone.",
			local, pref.Timezone)
	}
	return fmt.Sprintf(
		"Hey %s! ⏰\n\n"+
			"Let's set up your daily reminder to capture your storyworthy moment.%s\n\n"+
			"First, select your timezone:",
		firstName, existing)
}

func manualTimezonePromptText() string {
	return "📝 Please type your timezone manually.\n\n" +
		"Examples:\n" +
		"• <code>America/New_York</code>\n" +
		"• <code>Europe/London</code>\n" +
		"• <code>Asia/Tokyo</code>\n\n" +
		"<i>Find your timezone: https://en.wikipedia.org/wiki/List_of_tz_database_time_zones</i>"
}

func timezoneAcceptedText(zone string, loc *time.Location, now time.Time) string {
	return fmt.Sprintf(
		"✅ Timezone set to <b>%s</b>\n"+
			"Current time there: <b>%s</b>\n\n"+
			"Now, what time would you like your daily reminder?\n\n"+
			"Please use <b>HH:MM</b> format (24-hour) in <b>your local time</b>:\n\n"+
			"Examples:\n"+
			"• <code>09:00</code> - 9:00 AM\n"+
			"• <code>14:30</code> - 2:30 PM\n"+
			"• <code>20:00</code> - 8:00 PM\n\n"+
			"What time works for you? 📝",
		zone, now.In(loc).Format("15:04"))
}

func badTimezoneText(input string) string {
	return fmt.Sprintf(
		"⚠️ I don't recognize <code>%s</code> as a valid timezone.\n\n"+
			"Please try again with a timezone like:\n"+
			"• <code>America/New_York</code>\n"+
			"• <code>Europe/London</code>\n"+
			"• <code>Asia/Tokyo</code>\n\n"+
			"Or use /cancel to stop.",
		input)
}

func badTimeText() string {
	return "⚠️ That doesn't look like a valid time format.\n\n" +
		"Please use <b>HH:MM</b> format (24-hour), like:\n" +
		"• <code>09:00</code>\n" +
		"• <code>14:30</code>\n" +
		"• <code>20:00</code>\n\n" +
		"Try again or use /cancel to stop:"
}

func reminderSetText(localTime, zone string) string {
	return fmt.Sprintf(
		"✅ Perfect! Your daily reminder is set for <b>%s</b> (%s).\n\n"+
			"I'll send you a friendly nudge every day at this time to capture your moment.\n\n"+
			"💡 Use /reminders to manage your reminder settings anytime.\n\n"+
			"Happy storytelling! 🌟",
		localTime, zone)
}

func reminderCancelledText() string {
	return "No problem! Your reminder wasn't changed.\n\nUse /setreminder whenever you want to set it up! 👋"
}

func reminderStoppedText(wasDisabled bool) string {
	if wasDisabled {
		return "🔕 Your daily reminder has been stopped.\n\n" +
			"You can always turn it back on with /setreminder whenever you're ready!\n\n" +
			"Keep capturing those moments! ✨"
	}
	return "🤔 You don't have an active reminder set.\n\nUse /setreminder to create one!"
}

func reminderStatusText(pref *ReminderPref, now time.Time) string {
	if pref == nil {
		return "🤔 You don't have a reminder set yet.\n\nUse /setreminder to create one first!"
	}
	status := "🔕 Stopped"
	if pref.Enabled {
		status = "✅ Active"
	}

	var sb strings.Builder
	sb.WriteString("⏰ <b>Reminder Status</b>\n\n")
	fmt.Fprintf(&sb, "Status: %s\n", status)
	wroteLocal := false
	if loc, err := loadTimezone(pref.Timezone); err == nil {
		if local, err := utcClockToLocal(pref.ReminderTime, loc, now); err == nil {
			fmt.Fprintf(&sb, "Time: <b>%s</b>\nTimezone: <b>%s</b>\n\n", local, pref.Timezone)
			wroteLocal = true
		}
	}
	if !wroteLocal {
		fmt.Fprintf(&sb, "Scheduled time: <b>%s UTC</b>\n\n", pref.ReminderTime)
	}
	if pref.Enabled {
		sb.WriteString("Your daily reminder is active! I'll send you a message at the scheduled time.\n\n")
	} else {
		sb.WriteString("Your reminder is currently stopped.\n\n")
	}
	sb.WriteString("💡 Use /reminders to manage your reminder settings.")
	return sb.String()
}

func reminderNudgeText(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(
		"🌟 <b>Daily Reminder</b> 🌟\n\n"+
			"Hey %s! Time for your Homework for Life.\n\n"+
			"<i>If you had to tell a story from today — a five-minute story onstage "+
			"about something that took place over the course of this day — what would it be?</i>\n\n"+
			"Take a moment to reflect on your day. What moment stood out?\n\n"+
			"Tap the button below to capture it! 👇",
		firstName)
}

// --- Feedback Dialog ---

func feedbackPromptText(firstName string) string {
	return fmt.Sprintf(
		"Hey %s! 👋\n\n"+
			"I'd love to hear your thoughts! 💭\n\n"+
			"Your feedback helps make this bot better for everyone. "+
			"Whether it's a bug report, feature request, or just a comment "+
			"about your experience — I'm all ears!\n\n"+
			"What's on your mind? 📝",
		firstName)
}

func feedbackEmptyText() string {
	return "🤔 That message looks empty. Tell me what's on your mind, or use /cancel to stop."
}

func feedbackThanksText() string {
	return "🙏 <b>Thank you so much!</b>\n\n" +
		"Your feedback has been recorded and will help improve the bot. " +
		"I really appreciate you taking the time to share your thoughts!\n\n" +
		"Keep capturing those moments! ✨"
}

func feedbackCancelledText() string {
	return "Feedback cancelled. No worries! You can share feedback anytime with /feedback 💙"
}

// --- Misc ---

func nothingToCancelText() string {
	return "Nothing to cancel — no dialog is in progress. Use /story to capture a moment! ✨"
}

func sessionExpiredText() string {
	return "⌛ Your previous dialog timed out. Start again whenever you're ready!"
}

func exportCaptionText(count int) string {
	return fmt.Sprintf(
		"📚 Here are your <b>%d</b> storyworthy moments!\n\nKeep capturing life's meaningful moments. ✨",
		count)
}
