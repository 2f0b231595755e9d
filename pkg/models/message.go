package models

import "time"

// Message represents an email message as held by the message store.
// ReplyPriority, Category, AISummary and EstimatedReplyTime are optional
// overrides; when empty they are derived at read time.
type Message struct {
	Seq                int64     `db:"seq" json:"seq,omitempty"` // Insertion order, assigned by the store
	ID                 string    `db:"id" json:"id"`
	From               string    `db:"from_addr" json:"from"`
	To                 string    `db:"to_addr" json:"to"`
	Subject            string    `db:"subject" json:"subject"`
	Body               string    `db:"body" json:"body"`
	Snippet            string    `db:"snippet" json:"snippet,omitempty"` // Short-form body used when Body is empty
	ReceivedAt         time.Time `db:"received_at" json:"receivedAt"`
	IsRead             bool      `db:"is_read" json:"isRead"`
	IsDraft            bool      `db:"is_draft" json:"isDraft"`
	IsArchived         bool      `db:"is_archived" json:"isArchived,omitempty"`
	IsDeleted          bool      `db:"is_deleted" json:"isDeleted,omitempty"`
	ThreadID           string    `db:"thread_id" json:"threadId,omitempty"`
	InReplyTo          string    `db:"in_reply_to" json:"inReplyTo,omitempty"` // Source message of a draft
	NeedsReply         bool      `db:"needs_reply" json:"needsReply"`
	ReplyPriority      Priority  `db:"reply_priority" json:"replyPriority,omitempty"`
	Category           string    `db:"category" json:"category,omitempty"`
	AISummary          string    `db:"ai_summary" json:"aiSummary,omitempty"`
	EstimatedReplyTime string    `db:"estimated_reply_time" json:"estimatedReplyTime,omitempty"` // Minutes, e.g. "5-7"
}

// ThreadKey returns the thread identity of the message. A message without a
// thread id is its own single-message thread.
func (m *Message) ThreadKey() string {
	if m.ThreadID != "" {
		return m.ThreadID
	}
	return m.ID
}

// Text returns the body, falling back to the snippet
func (m *Message) Text() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Snippet
}

// Active reports whether the message is visible in list and thread views
func (m *Message) Active() bool {
	return !m.IsArchived && !m.IsDeleted
}

// Session carries the identity of the connected mailbox owner
type Session struct {
	Owner string // Address used as the sender of drafts
}
