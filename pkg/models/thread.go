package models

// Thread is a derived view of the messages sharing a thread identity,
// ordered by ReceivedAt ascending. Threads are never persisted.
type Thread struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// Count returns the number of messages in the thread
func (t Thread) Count() int {
	return len(t.Messages)
}

// Latest returns the most recent message of the thread
func (t Thread) Latest() (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// Priority returns the priority of the latest message
func (t Thread) Priority() Priority {
	latest, ok := t.Latest()
	if !ok {
		return PriorityUnset
	}
	return latest.ReplyPriority
}

// ThreadSummary is a list row for a thread.
// Total counts every active member regardless of the list filter;
// Visible counts only the members admitted by the filter.
type ThreadSummary struct {
	ThreadID string   `json:"threadId"`
	Latest   Message  `json:"latest"`
	Total    int      `json:"total"`
	Visible  int      `json:"visible"`
	Priority Priority `json:"priority"`
}
