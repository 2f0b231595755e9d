package models

// CallbackAction type of callback action
type CallbackAction string

const (
	CallbackMarkRead CallbackAction = "mr"
	CallbackArchive  CallbackAction = "ar"
	CallbackDraft    CallbackAction = "dr"
	CallbackSummary  CallbackAction = "sm"
	CallbackThread   CallbackAction = "th"
)

// CallbackData structure for inline button callback.
// Telegram limits callback data to 64 bytes, so keys stay single letters.
type CallbackData struct {
	Action    CallbackAction `json:"a"`
	MessageID string         `json:"m"`
	Intent    string         `json:"i,omitempty"` // Quick-reply intent code for drafts
}
