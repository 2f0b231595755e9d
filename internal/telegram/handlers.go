package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/emailtriage/internal/draft"
	"github.com/mixelka/emailtriage/internal/formatter"
	"github.com/mixelka/emailtriage/internal/triage"
	appmodels "github.com/mixelka/emailtriage/pkg/models"
)

// filterFromArgs reads an optional view argument. No argument selects
// messages awaiting a reply.
func filterFromArgs(args []string) (triage.Filter, string, error) {
	if len(args) == 0 {
		return triage.Filter{View: triage.ViewNeedsReply}, "Needs reply", nil
	}

	name := strings.ToLower(args[0])
	if name == "drafts" {
		return triage.Filter{Drafts: true}, "Drafts", nil
	}

	view, err := triage.ParseView(name)
	if err != nil {
		return triage.Filter{}, "", err
	}
	if view == triage.ViewAll {
		return triage.Filter{}, "All messages", nil
	}
	return triage.Filter{View: view}, strings.ToUpper(name[:1]) + name[1:], nil
}

// handleInbox handles /inbox [view]
func (b *Bot) handleInbox(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)

	filter, title, err := filterFromArgs(args)
	if err != nil {
		b.sendMessage(ctx, msg.Chat.ID, errorText(err))
		return
	}

	msgs, err := b.triage.List(ctx, filter)
	if err != nil {
		b.logger.Error("failed to list messages", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, errorText(err))
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, b.formatter.FormatInbox(title, msgs, b.inboxLimit))
}

// handleThread handles /thread id and /threads [view]
func (b *Bot) handleThread(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	cmd, args := parseCommand(msg.Text)

	if cmd == "/threads" {
		b.handleThreads(ctx, msg.Chat.ID, args)
		return
	}
	if cmd != "/thread" {
		return
	}
	if len(args) != 1 {
		b.sendMessage(ctx, msg.Chat.ID, "Usage: <code>/thread id</code>")
		return
	}

	b.sendThread(ctx, msg.Chat.ID, args[0])
}

func (b *Bot) handleThreads(ctx context.Context, chatID int64, args []string) {
	filter, title, err := filterFromArgs(args)
	if err != nil {
		b.sendMessage(ctx, chatID, errorText(err))
		return
	}

	rows, err := b.triage.ListThreads(ctx, filter)
	if err != nil {
		b.logger.Error("failed to list threads", "error", err)
		b.sendMessage(ctx, chatID, errorText(err))
		return
	}

	b.sendMessage(ctx, chatID, b.formatter.FormatThreads(title, rows, b.inboxLimit))
}

// sendThread sends the conversation that id names. A message id is resolved
// to the thread it belongs to.
func (b *Bot) sendThread(ctx context.Context, chatID int64, id string) {
	threadID := id
	if m, err := b.triage.Get(ctx, id); err == nil {
		threadID = m.ThreadKey()
	}

	msgs, err := b.triage.ThreadMessages(ctx, threadID)
	if err != nil {
		b.logger.Error("failed to load thread", "thread_id", threadID, "error", err)
		b.sendMessage(ctx, chatID, errorText(err))
		return
	}

	b.sendMessage(ctx, chatID, b.formatter.FormatThread(threadID, msgs))
}

// handleOpen handles /open id
func (b *Bot) handleOpen(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)
	if len(args) != 1 {
		b.sendMessage(ctx, msg.Chat.ID, "Usage: <code>/open id</code>")
		return
	}

	email, err := b.triage.View(ctx, args[0])
	if err != nil {
		b.sendMessage(ctx, msg.Chat.ID, errorText(err))
		return
	}

	b.sendMessageWithKeyboard(ctx, msg.Chat.ID, b.formatter.FormatMessage(email), formatter.BuildMessageKeyboard(email))
}

// handleSummary handles /summary id
func (b *Bot) handleSummary(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)
	if len(args) != 1 {
		b.sendMessage(ctx, msg.Chat.ID, "Usage: <code>/summary id</code>")
		return
	}

	result := b.triage.SummarizeThread(ctx, args[0])
	b.sendMessage(ctx, msg.Chat.ID, b.formatter.FormatSummary(result))
}

// handleDraft handles /draft id [intent or text]. A single word naming an
// intent selects that intent; anything else is used as the reply text.
func (b *Bot) handleDraft(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)
	if len(args) < 1 {
		b.sendMessage(ctx, msg.Chat.ID, "Usage: <code>/draft id [acknowledge|positive|decline|question|text]</code>")
		return
	}

	var result triage.DraftResult
	if intent, ok := intentArg(args[1:]); ok {
		result = b.triage.GenerateIntentDraft(ctx, args[0], intent)
	} else {
		result = b.triage.GenerateDraft(ctx, args[0], strings.Join(args[1:], " "))
	}
	b.sendMessage(ctx, msg.Chat.ID, b.formatter.FormatDraft(result))
}

// handleStats handles /stats
func (b *Bot) handleStats(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	stats, err := b.triage.Stats(ctx)
	if err != nil {
		b.logger.Error("failed to compute stats", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, errorText(err))
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, b.formatter.FormatStats(stats))
}

// handleCallback handles inline button callbacks
func (b *Bot) handleCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	data, err := formatter.DecodeCallback(callback.Data)
	if err != nil {
		b.logger.Error("failed to decode callback", "error", err, "data", callback.Data)
		b.answerCallback(ctx, callback.ID, "Error", false)
		return
	}

	switch data.Action {
	case appmodels.CallbackMarkRead:
		b.handleMarkRead(ctx, callback, data)
	case appmodels.CallbackArchive:
		b.handleArchive(ctx, callback, data)
	case appmodels.CallbackDraft:
		b.handleDraftCallback(ctx, callback, data)
	case appmodels.CallbackSummary:
		result := b.triage.SummarizeThread(ctx, data.MessageID)
		b.answerCallback(ctx, callback.ID, result.Summary, true)
	case appmodels.CallbackThread:
		chatID, _ := callbackMessage(callback)
		b.sendThread(ctx, chatID, data.MessageID)
		b.answerCallback(ctx, callback.ID, "", false)
	default:
		b.answerCallback(ctx, callback.ID, "Unknown action", false)
	}
}

// handleMarkRead handles mark as read callback
func (b *Bot) handleMarkRead(ctx context.Context, callback *models.CallbackQuery, data appmodels.CallbackData) {
	if err := b.triage.MarkRead(ctx, data.MessageID); err != nil {
		b.logger.Error("failed to mark as read", "id", data.MessageID, "error", err)
		b.answerCallback(ctx, callback.ID, errorText(err), false)
		return
	}

	// Update keyboard
	if email, err := b.triage.Get(ctx, data.MessageID); err == nil {
		chatID, msgID := callbackMessage(callback)
		if err := b.editMessageReplyMarkup(ctx, chatID, msgID, formatter.BuildMessageKeyboard(email)); err != nil {
			b.logger.Warn("failed to update keyboard", "error", err)
		}
	}

	b.answerCallback(ctx, callback.ID, "Marked as read", false)
}

// handleArchive handles archive callback
func (b *Bot) handleArchive(ctx context.Context, callback *models.CallbackQuery, data appmodels.CallbackData) {
	if err := b.triage.Archive(ctx, data.MessageID); err != nil {
		b.logger.Error("failed to archive", "id", data.MessageID, "error", err)
		b.answerCallback(ctx, callback.ID, errorText(err), false)
		return
	}

	chatID, msgID := callbackMessage(callback)
	if err := b.editMessageReplyMarkup(ctx, chatID, msgID, nil); err != nil {
		b.logger.Warn("failed to clear keyboard", "error", err)
	}

	b.answerCallback(ctx, callback.ID, "Archived", false)
}

// handleDraftCallback composes a quick reply for the intent in the callback
func (b *Bot) handleDraftCallback(ctx context.Context, callback *models.CallbackQuery, data appmodels.CallbackData) {
	intent, ok := draft.IntentFromCode(data.Intent)
	if !ok {
		b.answerCallback(ctx, callback.ID, fmt.Sprintf("Unknown reply intent %q", data.Intent), false)
		return
	}

	result := b.triage.GenerateIntentDraft(ctx, data.MessageID, intent)

	chatID, _ := callbackMessage(callback)
	b.sendMessage(ctx, chatID, b.formatter.FormatDraft(result))
	b.answerCallback(ctx, callback.ID, "Draft ready", false)
}

func intentArg(args []string) (draft.Intent, bool) {
	if len(args) != 1 {
		return "", false
	}
	return draft.ParseIntent(args[0])
}
