package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mixelka/emailtriage/internal/classifier"
	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/pkg/models"
)

// Stats summarizes the active mailbox
type Stats struct {
	Processed           int            `json:"processed"`
	NeedsReply          int            `json:"needsReply"`
	Urgent              int            `json:"urgent"`
	Unread              int            `json:"unread"`
	Drafts              int            `json:"drafts"`
	Threads             int            `json:"threads"`
	ByCategory          map[string]int `json:"byCategory"`
	ByPriority          map[string]int `json:"byPriority"`
	PendingReplyMinutes int            `json:"pendingReplyMinutes"` // Lower-bound effort for messages awaiting a reply
}

// Stats computes mailbox analytics over active messages. Drafts are counted
// separately and excluded from the other figures.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	active, err := s.active(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		ByCategory: make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, p := range models.Priorities {
		stats.ByPriority[p.String()] = 0
	}

	threads := make(map[string]bool)
	for _, msg := range active {
		if msg.IsDraft {
			stats.Drafts++
			continue
		}

		stats.Processed++
		threads[msg.ThreadKey()] = true
		stats.ByCategory[msg.Category]++
		stats.ByPriority[msg.ReplyPriority.String()]++

		if !msg.IsRead {
			stats.Unread++
		}
		if msg.ReplyPriority == models.PriorityUrgent {
			stats.Urgent++
		}
		if msg.NeedsReply {
			stats.NeedsReply++
			stats.PendingReplyMinutes += classifier.EffortMinutes(msg.EstimatedReplyTime)
		}
	}
	stats.Threads = len(threads)
	return stats, nil
}

// IngestResult reports how many messages Ingest stored
type IngestResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"` // Already present
}

// Ingest stores new messages, skipping ids that already exist. Messages
// without an id get a generated one.
func (s *Service) Ingest(ctx context.Context, msgs []models.Message) (IngestResult, error) {
	var result IngestResult
	for i := range msgs {
		msg := msgs[i]
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}

		err := s.store.Insert(ctx, &msg)
		if errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Debug("message already exists, skipping", "id", msg.ID)
			result.Skipped++
			continue
		}
		if err != nil {
			return result, storeError(fmt.Sprintf("ingest message %s", msg.ID), err)
		}
		result.Inserted++
	}

	s.logger.Info("messages ingested", "inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}
