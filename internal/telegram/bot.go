package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/emailtriage/internal/config"
	"github.com/mixelka/emailtriage/internal/formatter"
	"github.com/mixelka/emailtriage/internal/triage"
)

// Bot represents the Telegram bot
type Bot struct {
	bot        *bot.Bot
	triage     *triage.Service
	formatter  *formatter.TelegramFormatter
	logger     *slog.Logger
	chatID     int64
	inboxLimit int
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Config    *config.Config
	Triage    *triage.Service
	Formatter *formatter.TelegramFormatter
	Logger    *slog.Logger
	Options   []bot.Option // Extra client options, e.g. a server URL in tests
}

// NewBot creates a new Telegram bot. Only the configured chat is served.
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		triage:     deps.Triage,
		formatter:  deps.Formatter,
		logger:     deps.Logger.With("component", "telegram_bot"),
		chatID:     deps.Config.TelegramChatID,
		inboxLimit: deps.Config.TelegramInboxLimit,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithMiddlewares(b.onlyConfiguredChat),
	}
	opts = append(opts, deps.Options...)

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/inbox", bot.MatchTypePrefix, b.handleInbox)
	// Also serves /threads; prefixes must not overlap between handlers
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/thread", bot.MatchTypePrefix, b.handleThread)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/open", bot.MatchTypePrefix, b.handleOpen)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/summary", bot.MatchTypePrefix, b.handleSummary)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/draft", bot.MatchTypePrefix, b.handleDraft)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypePrefix, b.handleStats)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)
}

// Start starts the bot and blocks until ctx is done
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting telegram bot", "chat_id", b.chatID)
	b.bot.Start(ctx)
}

// onlyConfiguredChat drops updates from any chat but the configured one
func (b *Bot) onlyConfiguredChat(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
		if chatID := updateChatID(update); chatID != b.chatID {
			b.logger.Debug("ignoring update from another chat", "chat_id", chatID)
			return
		}
		next(ctx, tgBot, update)
	}
}

// defaultHandler handles unknown messages
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	// Ignore non-message updates and messages without text
	if update.Message == nil {
		return
	}

	// Log unknown commands
	if update.Message.Text != "" && update.Message.Text[0] == '/' {
		b.logger.Debug("unknown command", "text", update.Message.Text)
	}
}

// handleStart handles /start command
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelp(ctx, tgBot, update)
}

// handleHelp handles /help command
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	text := `<b>Email triage</b>

<b>Commands:</b>
/inbox [view] - list messages (needs-reply, all, urgent, high, medium, low, drafts)
/threads [view] - list conversations
/open id - show a message and mark it read
/thread id - show a conversation
/summary id - summarize a message or thread
/draft id [intent or text] - compose a reply
/stats - mailbox analytics

<b>Intents:</b> acknowledge, positive, decline, question

<b>Examples:</b>
<code>/inbox urgent</code>
<code>/draft sample-03 decline</code>
<code>/draft sample-03 I can join on Friday.</code>`

	b.sendMessage(ctx, update.Message.Chat.ID, text)
}
