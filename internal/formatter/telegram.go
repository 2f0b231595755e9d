package formatter

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/mixelka/emailtriage/internal/triage"
	"github.com/mixelka/emailtriage/pkg/models"
)

var priorityBadges = map[models.Priority]string{
	models.PriorityUrgent: "🔴",
	models.PriorityHigh:   "🟠",
	models.PriorityMedium: "🟡",
	models.PriorityLow:    "🟢",
}

// TelegramFormatter formats triage results as Telegram HTML
type TelegramFormatter struct {
	maxLength int
}

// NewTelegramFormatter creates a new Telegram formatter
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{
		maxLength: 4000, // Leave room for markup
	}
}

// FormatMessage formats one message card
func (f *TelegramFormatter) FormatMessage(msg models.Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", badge(msg.ReplyPriority), f.escapeHTML(msg.ReplyPriority.Label())))
	sb.WriteString(fmt.Sprintf("<b>From:</b> %s\n", f.escapeHTML(msg.From)))
	if msg.IsDraft {
		sb.WriteString(fmt.Sprintf("<b>To:</b> %s\n", f.escapeHTML(msg.To)))
	}
	sb.WriteString(fmt.Sprintf("<b>Subject:</b> %s\n", f.escapeHTML(msg.Subject)))
	sb.WriteString(fmt.Sprintf("<b>Date:</b> %s\n", msg.ReceivedAt.Format("02.01.2006 15:04")))
	sb.WriteString(fmt.Sprintf("<b>Category:</b> %s · <b>Reply:</b> %s min\n", f.escapeHTML(msg.Category), f.escapeHTML(msg.EstimatedReplyTime)))
	sb.WriteString(fmt.Sprintf("<b>ID:</b> <code>%s</code>\n", f.escapeHTML(msg.ID)))
	sb.WriteString("\n")

	body := f.truncate(msg.Text(), f.maxLength-sb.Len()-50)
	sb.WriteString(body)

	return sb.String()
}

// FormatInbox formats a list view. At most limit rows are shown.
func (f *TelegramFormatter) FormatInbox(title string, msgs []models.Message, limit int) string {
	if len(msgs) == 0 {
		return fmt.Sprintf("<b>%s</b>\n\nNothing here.", f.escapeHTML(title))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b> (%d)\n\n", f.escapeHTML(title), len(msgs)))

	shown := msgs
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, msg := range shown {
		f.writeRow(&sb, msg, 0)
	}
	if len(shown) < len(msgs) {
		sb.WriteString(fmt.Sprintf("<i>... and %d more</i>", len(msgs)-len(shown)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatThreads formats thread list rows with their message counts
func (f *TelegramFormatter) FormatThreads(title string, rows []models.ThreadSummary, limit int) string {
	if len(rows) == 0 {
		return fmt.Sprintf("<b>%s</b>\n\nNothing here.", f.escapeHTML(title))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b> (%d)\n\n", f.escapeHTML(title), len(rows)))

	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, row := range shown {
		f.writeRow(&sb, row.Latest, row.Total)
	}
	if len(shown) < len(rows) {
		sb.WriteString(fmt.Sprintf("<i>... and %d more</i>", len(rows)-len(shown)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// writeRow writes one list entry; total > 1 adds a thread count badge
func (f *TelegramFormatter) writeRow(sb *strings.Builder, msg models.Message, total int) {
	unread := ""
	if !msg.IsRead {
		unread = "• "
	}
	count := ""
	if total > 1 {
		count = fmt.Sprintf(" (%d messages)", total)
	}

	sb.WriteString(fmt.Sprintf("%s %s<b>%s</b>%s\n", badge(msg.ReplyPriority), unread, f.escapeHTML(msg.Subject), count))
	sb.WriteString(fmt.Sprintf("   %s · %s\n", f.escapeHTML(msg.From), msg.ReceivedAt.Format("02.01 15:04")))
	sb.WriteString(fmt.Sprintf("   <code>%s</code>\n\n", f.escapeHTML(msg.ID)))
}

// FormatThread formats a conversation, oldest first
func (f *TelegramFormatter) FormatThread(threadID string, msgs []models.Message) string {
	if len(msgs) == 0 {
		return fmt.Sprintf("Thread <code>%s</code> has no messages.", f.escapeHTML(threadID))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Thread:</b> %s (%d messages)\n\n", f.escapeHTML(msgs[0].Subject), len(msgs)))

	perMessage := (f.maxLength - sb.Len()) / len(msgs)
	for _, msg := range msgs {
		sb.WriteString(fmt.Sprintf("<b>%s</b> · %s\n", f.escapeHTML(msg.From), msg.ReceivedAt.Format("02.01 15:04")))
		sb.WriteString(f.truncate(msg.AISummary, perMessage-100))
		sb.WriteString("\n\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatSummary formats a summary result
func (f *TelegramFormatter) FormatSummary(result triage.SummaryResult) string {
	if !result.Available {
		return fmt.Sprintf("<i>%s</i>", f.escapeHTML(result.Summary))
	}
	return fmt.Sprintf("<b>Summary:</b>\n%s", f.escapeHTML(result.Summary))
}

// FormatDraft formats a generated reply draft
func (f *TelegramFormatter) FormatDraft(result triage.DraftResult) string {
	if result.NotFound {
		return fmt.Sprintf("<i>%s</i>", f.escapeHTML(result.Draft))
	}
	return fmt.Sprintf("<b>Draft reply:</b>\n<pre>%s</pre>", f.escapeHTML(result.Draft))
}

// FormatStats formats mailbox analytics
func (f *TelegramFormatter) FormatStats(stats triage.Stats) string {
	var sb strings.Builder

	sb.WriteString("<b>Mailbox stats</b>\n\n")
	sb.WriteString(fmt.Sprintf("Processed: %d\n", stats.Processed))
	sb.WriteString(fmt.Sprintf("Needs reply: %d\n", stats.NeedsReply))
	sb.WriteString(fmt.Sprintf("Urgent: %d\n", stats.Urgent))
	sb.WriteString(fmt.Sprintf("Unread: %d\n", stats.Unread))
	sb.WriteString(fmt.Sprintf("Threads: %d\n", stats.Threads))
	sb.WriteString(fmt.Sprintf("Drafts: %d\n", stats.Drafts))
	sb.WriteString(fmt.Sprintf("Pending replies: ~%d min\n", stats.PendingReplyMinutes))

	if len(stats.ByPriority) > 0 {
		sb.WriteString("\n<b>By priority:</b>\n")
		for _, p := range models.Priorities {
			if n := stats.ByPriority[p.String()]; n > 0 {
				sb.WriteString(fmt.Sprintf("%s %s: %d\n", badge(p), p.String(), n))
			}
		}
	}

	if len(stats.ByCategory) > 0 {
		sb.WriteString("\n<b>By category:</b>\n")
		categories := make([]string, 0, len(stats.ByCategory))
		for c := range stats.ByCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			sb.WriteString(fmt.Sprintf("%s: %d\n", f.escapeHTML(c), stats.ByCategory[c]))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func badge(p models.Priority) string {
	if b, ok := priorityBadges[p]; ok {
		return b
	}
	return "⚪"
}

// escapeHTML escapes HTML special characters for Telegram
func (f *TelegramFormatter) escapeHTML(s string) string {
	return html.EscapeString(s)
}

// truncate escapes s and cuts it to maxLen characters
func (f *TelegramFormatter) truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return f.escapeHTML(s)
	}
	return f.escapeHTML(string(runes[:maxLen])) + "\n\n<i>... (truncated)</i>"
}
