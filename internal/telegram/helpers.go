package telegram

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/emailtriage/internal/triage"
)

// parseCommand splits "/cmd@botname arg1 arg2" into "/cmd" and its args
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	cmd := fields[0]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

// updateChatID returns the chat an update belongs to, or 0
func updateChatID(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil:
		chatID, _ := callbackMessage(update.CallbackQuery)
		return chatID
	default:
		return 0
	}
}

// callbackMessage returns the chat and message a button was attached to
func callbackMessage(callback *models.CallbackQuery) (int64, int) {
	switch {
	case callback.Message.Message != nil:
		return callback.Message.Message.Chat.ID, callback.Message.Message.ID
	case callback.Message.InaccessibleMessage != nil:
		return callback.Message.InaccessibleMessage.Chat.ID, callback.Message.InaccessibleMessage.MessageID
	default:
		return 0, 0
	}
}

// errorText turns a triage error into a user-facing line
func errorText(err error) string {
	switch {
	case errors.Is(err, triage.ErrNotFound):
		return "Message not found"
	case errors.Is(err, triage.ErrValidation):
		return err.Error()
	case errors.Is(err, triage.ErrStoreUnavailable):
		return "Mailbox store is unavailable, try again later"
	default:
		return "Something went wrong"
	}
}

// sendMessage sends an HTML message
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) (*models.Message, error) {
	msg, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
	return msg, err
}

// sendMessageWithKeyboard sends a message with inline keyboard
func (b *Bot) sendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error) {
	if keyboard == nil {
		return b.sendMessage(ctx, chatID, text)
	}

	msg, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
	return msg, err
}

// editMessageReplyMarkup edits the reply markup of a message
func (b *Bot) editMessageReplyMarkup(ctx context.Context, chatID int64, msgID int, keyboard *models.InlineKeyboardMarkup) error {
	if keyboard == nil {
		keyboard = &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}}
	}
	_, err := b.bot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   msgID,
		ReplyMarkup: keyboard,
	})
	return err
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	_, err := b.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       showAlert,
	})
	return err
}
