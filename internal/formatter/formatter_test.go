package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/emailtriage/internal/draft"
	"github.com/mixelka/emailtriage/internal/triage"
	appmodels "github.com/mixelka/emailtriage/pkg/models"
)

func testMessage() appmodels.Message {
	return appmodels.Message{
		ID:                 "m-1",
		From:               "boss@corp.example",
		To:                 "me@example.com",
		Subject:            "Q3 <budget> & plan",
		Body:               "Please review.",
		ReceivedAt:         time.Date(2025, 6, 3, 9, 15, 0, 0, time.UTC),
		ThreadID:           "t-1",
		NeedsReply:         true,
		ReplyPriority:      appmodels.PriorityHigh,
		Category:           "Report",
		AISummary:          "Please review.",
		EstimatedReplyTime: "2-3",
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	in := appmodels.CallbackData{Action: appmodels.CallbackDraft, MessageID: "m-1", Intent: "d"}

	out, err := DecodeCallback(EncodeCallback(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = DecodeCallback("not json")
	assert.Error(t, err)
}

func TestCallbackFits(t *testing.T) {
	assert.True(t, CallbackFits("budget-1@corp.example"))
	assert.False(t, CallbackFits(strings.Repeat("x", MaxCallbackData)))
}

func TestBuildMessageKeyboard(t *testing.T) {
	msg := testMessage()
	kb := BuildMessageKeyboard(msg)
	require.NotNil(t, kb)

	// actions, two rows of quick replies, info
	require.Len(t, kb.InlineKeyboard, 4)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 2)
	assert.Len(t, kb.InlineKeyboard[2], 2)
	assert.Len(t, kb.InlineKeyboard[3], 2)

	var intents []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			assert.LessOrEqual(t, len(b.CallbackData), MaxCallbackData)
			cb, err := DecodeCallback(b.CallbackData)
			require.NoError(t, err)
			if cb.Action == appmodels.CallbackDraft {
				intents = append(intents, cb.Intent)
			}
			if cb.Action == appmodels.CallbackThread {
				assert.Equal(t, "t-1", cb.MessageID)
			}
		}
	}
	assert.Equal(t, []string{"a", "p", "d", "q"}, intents)
	_, ok := draft.IntentFromCode(intents[2])
	assert.True(t, ok)
}

func TestBuildMessageKeyboardReadDraft(t *testing.T) {
	msg := testMessage()
	msg.IsRead = true
	msg.IsDraft = true
	msg.ThreadID = ""

	kb := BuildMessageKeyboard(msg)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 1, "no mark-read button for read messages")
	assert.Len(t, kb.InlineKeyboard[1], 1, "no thread button without a thread")
}

func TestBuildMessageKeyboardLongID(t *testing.T) {
	msg := testMessage()
	msg.ID = strings.Repeat("x", 80)
	assert.Nil(t, BuildMessageKeyboard(msg))
}

func TestFormatMessageEscapes(t *testing.T) {
	text := NewTelegramFormatter().FormatMessage(testMessage())

	assert.Contains(t, text, "Q3 &lt;budget&gt; &amp; plan")
	assert.Contains(t, text, "High Priority")
	assert.Contains(t, text, "<code>m-1</code>")
	assert.Contains(t, text, "2-3 min")
	assert.NotContains(t, text, "<budget>")
}

func TestFormatMessageTruncates(t *testing.T) {
	msg := testMessage()
	msg.Body = strings.Repeat("a", 5000)

	text := NewTelegramFormatter().FormatMessage(msg)
	assert.Contains(t, text, "(truncated)")
	assert.Less(t, len([]rune(text)), 4100)
}

func TestFormatInbox(t *testing.T) {
	f := NewTelegramFormatter()

	assert.Contains(t, f.FormatInbox("Inbox", nil, 5), "Nothing here.")

	msgs := []appmodels.Message{testMessage(), testMessage(), testMessage()}
	msgs[1].ID = "m-2"
	msgs[2].ID = "m-3"

	text := f.FormatInbox("Inbox", msgs, 2)
	assert.Contains(t, text, "<b>Inbox</b> (3)")
	assert.Contains(t, text, "m-1")
	assert.Contains(t, text, "m-2")
	assert.NotContains(t, text, "m-3")
	assert.Contains(t, text, "and 1 more")
}

func TestFormatThreads(t *testing.T) {
	rows := []appmodels.ThreadSummary{
		{ThreadID: "t-1", Latest: testMessage(), Total: 3, Visible: 1, Priority: appmodels.PriorityHigh},
	}

	text := NewTelegramFormatter().FormatThreads("Threads", rows, 10)
	assert.Contains(t, text, "(3 messages)")
}

func TestFormatSummaryAndDraft(t *testing.T) {
	f := NewTelegramFormatter()

	assert.Contains(t, f.FormatSummary(triage.SummaryResult{Summary: "Short", Available: true}), "Short")
	assert.Equal(t, "<i>Summary not available</i>", f.FormatSummary(triage.SummaryResult{Summary: "Summary not available"}))

	text := f.FormatDraft(triage.DraftResult{Draft: "Dear a,\n\n<ok>"})
	assert.Contains(t, text, "<pre>Dear a,\n\n&lt;ok&gt;</pre>")
	assert.Equal(t, "<i>Email not found</i>", f.FormatDraft(triage.DraftResult{Draft: "Email not found", NotFound: true}))
}

func TestFormatStats(t *testing.T) {
	text := NewTelegramFormatter().FormatStats(triage.Stats{
		Processed:  4,
		NeedsReply: 2,
		ByPriority: map[string]int{"urgent": 1, "high": 0, "low": 3},
		ByCategory: map[string]int{"Report": 1, "General": 3},
	})

	assert.Contains(t, text, "Processed: 4")
	assert.Contains(t, text, "urgent: 1")
	assert.NotContains(t, text, "high: 0")
	assert.Less(t, strings.Index(text, "General"), strings.Index(text, "Report"))
}
