package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// --- Telegram Types ---

type tgUpdate struct {
	UpdateID      int              `json:"update_id"`
	Message       *tgMessage       `json:"message"`
	CallbackQuery *tgCallbackQuery `json:"callback_query"`
}

type tgMessage struct {
	MessageID int     `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      tgChat  `json:"chat"`
	Text      string  `json:"text"`
}

type tgChat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type tgUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type tgCallbackQuery struct {
	ID      string     `json:"id"`
	From    tgUser     `json:"from"`
	Message *tgMessage `json:"message"`
	Data    string     `json:"data"`
}

// Inline keyboard types for Telegram Bot API.
type tgInlineKeyboard struct {
	InlineKeyboard [][]tgInlineButton `json:"inline_keyboard"`
}

type tgInlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type tgBotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// --- Bot ---

// Bot is the Telegram transport: long-poll inbound loop plus the outbound
// send operations. It implements Sender for the conversation engine and the
// notification dispatcher.
type Bot struct {
	token       string
	apiBase     string
	pollTimeout int
	client      *http.Client
	cfg         *Config
	store       *Store
	engine      *Engine
}

func newBot(cfg *Config, store *Store) *Bot {
	timeout := cfg.Telegram.pollTimeoutOrDefault()
	return &Bot{
		token:       cfg.Telegram.BotToken,
		apiBase:     "https://api.telegram.org",
		pollTimeout: timeout,
		client:      &http.Client{Timeout: time.Duration(timeout+10) * time.Second},
		cfg:         cfg,
		store:       store,
	}
}

func (b *Bot) apiURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.apiBase, b.token, method)
}

// registerCommands publishes the command menu once at startup.
func (b *Bot) registerCommands() error {
	commands := []tgBotCommand{
		{"start", "Welcome message"},
		{"story", "Record today's storyworthy moment"},
		{"mystories", "View your saved stories"},
		{"export", "Export your stories as a text file"},
		{"reminders", "Manage daily reminders"},
		{"setreminder", "Set your daily reminder"},
		{"feedback", "Share your thoughts about the bot"},
		{"cancel", "Cancel the current dialog"},
		{"about", "Learn about Homework for Life"},
		{"help", "Show available commands"},
	}
	return b.post("setMyCommands", map[string]any{"commands": commands})
}

// --- Poll Loop ---

// pollLoop receives updates via long polling and handles them in arrival
// order. Per-user ordering is what the conversation engine depends on;
// running one update at a time gives it for free.
func (b *Bot) pollLoop(ctx context.Context) {
	offset := 0
	logInfo("telegram bot polling started", "pollTimeout", b.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		url := fmt.Sprintf("%s?offset=%d&timeout=%d", b.apiURL("getUpdates"), offset, b.pollTimeout)
		req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
		resp, err := b.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logError("telegram poll error", "error", err)
			time.Sleep(5 * time.Second)
			continue
		}

		var body struct {
			OK     bool       `json:"ok"`
			Result []tgUpdate `json:"result"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		for _, u := range body.Result {
			offset = u.UpdateID + 1
			uctx := withTraceID(ctx, newTraceID())

			if u.CallbackQuery != nil {
				b.handleCallback(uctx, u.CallbackQuery)
				continue
			}
			if u.Message == nil || u.Message.From == nil || u.Message.From.IsBot {
				continue
			}
			b.handleMessage(uctx, u.Message)
		}
	}
}

// handleMessage routes one inbound message: commands to their handlers,
// free text to the active dialog, anything left to the fallback responder.
func (b *Bot) handleMessage(ctx context.Context, msg *tgMessage) {
	user := userMeta{ID: msg.From.ID, Username: msg.From.Username, FirstName: msg.From.FirstName}
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, user, text)
		return
	}
	if b.engine.HandleText(user, text) {
		return
	}
	logInfoCtx(ctx, "fallback text", "userID", user.ID)
	b.sendHTML(user.ID, fallbackText(user.FirstName), nil)
}

// splitCommand separates "/story@MomentsBot extra" into "/story" and "extra".
func splitCommand(text string) (command, args string) {
	parts := strings.SplitN(text, " ", 2)
	command = parts[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args
}

// --- Sender ---

// SendText sends a plain message. HTML parse mode with a plain retry when
// Telegram rejects the markup.
func (b *Bot) SendText(chatID int64, text string) error {
	return b.sendHTML(chatID, text, nil)
}

// SendKeyboard sends a message with an inline keyboard.
func (b *Bot) SendKeyboard(chatID int64, text string, keyboard [][]tgInlineButton) error {
	return b.sendHTML(chatID, text, keyboard)
}

func (b *Bot) sendHTML(chatID int64, text string, keyboard [][]tgInlineButton) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if len(keyboard) > 0 {
		payload["reply_markup"] = tgInlineKeyboard{InlineKeyboard: keyboard}
	}
	return b.postWithParseRetry("sendMessage", payload)
}

// editMessage rewrites a previously sent message in place (used when a
// button press transitions a menu).
func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard [][]tgInlineButton) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if len(keyboard) > 0 {
		payload["reply_markup"] = tgInlineKeyboard{InlineKeyboard: keyboard}
	}
	return b.postWithParseRetry("editMessageText", payload)
}

// answerCallback acknowledges a callback query so the client stops the
// loading spinner.
func (b *Bot) answerCallback(callbackQueryID, text string) {
	payload := map[string]any{"callback_query_id": callbackQueryID}
	if text != "" {
		payload["text"] = text
	}
	if err := b.post("answerCallbackQuery", payload); err != nil {
		logWarn("telegram answerCallback error", "error", err)
	}
}

// SendDocument uploads content as a file attachment via multipart form.
func (b *Bot) SendDocument(chatID int64, filename, caption string, content []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("chat_id", fmt.Sprintf("%d", chatID))
	if caption != "" {
		w.WriteField("caption", caption)
		w.WriteField("parse_mode", "HTML")
	}
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("telegram document: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("telegram document: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram document: %w", err)
	}

	resp, err := b.client.Post(b.apiURL("sendDocument"), w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendDocument %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

// post sends one JSON API call and checks the status.
func (b *Bot) post(method string, payload map[string]any) error {
	body, _ := json.Marshal(payload)
	resp, err := b.client.Post(b.apiURL(method), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram %s %d: %s", method, resp.StatusCode, respBody)
	}
	return nil
}

// postWithParseRetry retries once without parse_mode when the markup is
// rejected, so a formatting slip degrades to plain text instead of silence.
func (b *Bot) postWithParseRetry(method string, payload map[string]any) error {
	body, _ := json.Marshal(payload)
	resp, err := b.client.Post(b.apiURL(method), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == 200 {
		return nil
	}
	respBody, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(respBody), "parse") {
		delete(payload, "parse_mode")
		body2, _ := json.Marshal(payload)
		resp2, err2 := b.client.Post(b.apiURL(method), "application/json", bytes.NewReader(body2))
		if err2 != nil {
			return fmt.Errorf("telegram %s retry: %w", method, err2)
		}
		resp2.Body.Close()
		if resp2.StatusCode == 200 {
			return nil
		}
	}
	return fmt.Errorf("telegram %s %d: %s", method, resp.StatusCode, respBody)
}
