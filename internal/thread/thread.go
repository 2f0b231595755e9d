// Package thread reconstructs conversation threads from a flat message list.
// Threads are recomputed on every call and never persisted.
package thread

import (
	"sort"

	"github.com/mixelka/emailtriage/pkg/models"
)

// Group partitions msgs by thread identity. Members of each thread are sorted
// by ReceivedAt ascending, keeping input order for equal timestamps. Threads
// are returned in order of first appearance in msgs.
func Group(msgs []models.Message) []models.Thread {
	index := make(map[string]int)
	var threads []models.Thread

	for _, msg := range msgs {
		key := msg.ThreadKey()
		i, ok := index[key]
		if !ok {
			i = len(threads)
			index[key] = i
			threads = append(threads, models.Thread{ID: key})
		}
		threads[i].Messages = append(threads[i].Messages, msg)
	}

	for i := range threads {
		sortByTime(threads[i].Messages)
	}
	return threads
}

// Messages returns the members of threadID in ascending time order.
// The result is empty, never nil, when nothing matches.
func Messages(msgs []models.Message, threadID string) []models.Message {
	members := make([]models.Message, 0)
	for _, msg := range msgs {
		if msg.ThreadKey() == threadID {
			members = append(members, msg)
		}
	}
	sortByTime(members)
	return members
}

// Summaries builds one list row per thread that has at least one visible
// message. all is the unfiltered set used for member counts; visible is the
// filtered subset and decides both the representative message and the row
// order (first appearance in visible).
//
// The representative is the visible member with the latest ReceivedAt. On
// equal timestamps the one inserted later wins, using its position in all.
func Summaries(all, visible []models.Message) []models.ThreadSummary {
	totals := make(map[string]int)
	position := make(map[string]int, len(all))
	for i, msg := range all {
		totals[msg.ThreadKey()]++
		position[msg.ID] = i
	}

	index := make(map[string]int)
	var rows []models.ThreadSummary

	for _, msg := range visible {
		key := msg.ThreadKey()
		i, ok := index[key]
		if !ok {
			index[key] = len(rows)
			rows = append(rows, models.ThreadSummary{
				ThreadID: key,
				Latest:   msg,
				Total:    totals[key],
				Visible:  1,
			})
			continue
		}

		row := &rows[i]
		row.Visible++
		if newer(msg, row.Latest, position) {
			row.Latest = msg
		}
	}

	for i := range rows {
		// A visible message missing from all still counts itself
		if rows[i].Total < rows[i].Visible {
			rows[i].Total = rows[i].Visible
		}
		rows[i].Priority = rows[i].Latest.ReplyPriority
	}
	return rows
}

func newer(candidate, current models.Message, position map[string]int) bool {
	if !candidate.ReceivedAt.Equal(current.ReceivedAt) {
		return candidate.ReceivedAt.After(current.ReceivedAt)
	}
	return position[candidate.ID] > position[current.ID]
}

func sortByTime(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].ReceivedAt.Before(msgs[j].ReceivedAt)
	})
}
