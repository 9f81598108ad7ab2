package main

// Sender delivers rendered messages to one recipient. The Telegram Bot
// implements it; tests substitute a recorder.
type Sender interface {
	SendText(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, keyboard [][]tgInlineButton) error
	SendDocument(chatID int64, filename, caption string, content []byte) error
}

// Dispatcher forwards notification requests to the transport. Delivery is
// fire-and-forget per recipient: a failed send is logged and never aborts
// the scheduler's pass over the remaining users.
type Dispatcher struct {
	sender Sender
}

func newDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// SendReminder delivers the daily nudge with its capture quick action.
func (d *Dispatcher) SendReminder(userID int64, firstName string) {
	kb := [][]tgInlineButton{{{Text: "📝 Add Story", CallbackData: "quick:story"}}}
	if err := d.sender.SendKeyboard(userID, reminderNudgeText(firstName), kb); err != nil {
		logError("reminder delivery failed", "userID", userID, "error", err)
		return
	}
	logInfo("reminder sent", "userID", userID)
}
