package formatter

import (
	"encoding/json"

	"github.com/go-telegram/bot/models"

	"github.com/mixelka/emailtriage/internal/draft"
	appmodels "github.com/mixelka/emailtriage/pkg/models"
)

// MaxCallbackData is the Telegram limit for callback data, in bytes
const MaxCallbackData = 64

var intentLabels = map[draft.Intent]string{
	draft.IntentAcknowledge: "👍 Got it",
	draft.IntentPositive:    "✅ Yes",
	draft.IntentDecline:     "❌ Decline",
	draft.IntentQuestion:    "❓ Ask",
}

// BuildMessageKeyboard creates an inline keyboard for a message card.
// It returns nil when the message id is too long for callback data; the
// commands shown in the card still work.
func BuildMessageKeyboard(msg appmodels.Message) *models.InlineKeyboardMarkup {
	if !CallbackFits(msg.ID) {
		return nil
	}

	var rows [][]models.InlineKeyboardButton

	// Action buttons
	actionRow := []models.InlineKeyboardButton{}
	if !msg.IsRead {
		actionRow = append(actionRow, button("Mark read", appmodels.CallbackData{
			Action:    appmodels.CallbackMarkRead,
			MessageID: msg.ID,
		}))
	}
	actionRow = append(actionRow, button("Archive", appmodels.CallbackData{
		Action:    appmodels.CallbackArchive,
		MessageID: msg.ID,
	}))
	rows = append(rows, actionRow)

	// Quick replies, two per row
	if !msg.IsDraft {
		var replyButtons []models.InlineKeyboardButton
		for _, intent := range draft.Intents {
			replyButtons = append(replyButtons, button(intentLabels[intent], appmodels.CallbackData{
				Action:    appmodels.CallbackDraft,
				MessageID: msg.ID,
				Intent:    intent.Code(),
			}))
		}
		for i := 0; i < len(replyButtons); i += 2 {
			end := i + 2
			if end > len(replyButtons) {
				end = len(replyButtons)
			}
			rows = append(rows, replyButtons[i:end])
		}
	}

	infoRow := []models.InlineKeyboardButton{
		button("Summary", appmodels.CallbackData{
			Action:    appmodels.CallbackSummary,
			MessageID: msg.ID,
		}),
	}
	if msg.ThreadID != "" && CallbackFits(msg.ThreadID) {
		infoRow = append(infoRow, button("Thread", appmodels.CallbackData{
			Action:    appmodels.CallbackThread,
			MessageID: msg.ThreadID,
		}))
	}
	rows = append(rows, infoRow)

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

func button(text string, data appmodels.CallbackData) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: EncodeCallback(data),
	}
}

// CallbackFits reports whether every callback for id stays within
// MaxCallbackData. The draft callback is the longest one.
func CallbackFits(id string) bool {
	longest := EncodeCallback(appmodels.CallbackData{
		Action:    appmodels.CallbackDraft,
		MessageID: id,
		Intent:    draft.IntentAcknowledge.Code(),
	})
	return len(longest) <= MaxCallbackData
}

// EncodeCallback encodes callback data to string
func EncodeCallback(data appmodels.CallbackData) string {
	b, _ := json.Marshal(data)
	return string(b)
}

// DecodeCallback decodes callback data from string
func DecodeCallback(data string) (appmodels.CallbackData, error) {
	var cb appmodels.CallbackData
	err := json.Unmarshal([]byte(data), &cb)
	return cb, err
}
