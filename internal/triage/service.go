// Package triage composes classification, summaries, threads and drafts into
// the operations exposed over the message store.
package triage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mixelka/emailtriage/internal/classifier"
	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/summarizer"
	"github.com/mixelka/emailtriage/internal/thread"
	"github.com/mixelka/emailtriage/pkg/models"
)

// Service is the triage orchestrator. It keeps no state of its own; every
// call works on a fresh snapshot of the store.
type Service struct {
	store   store.Store
	session models.Session
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new triage service
func NewService(st store.Store, session models.Session, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   st,
		session: session,
		logger:  logger.With("component", "triage"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the session the service acts for
func (s *Service) Session() models.Session {
	return s.session
}

// List returns active messages admitted by filter with derived fields
// populated, most pressing first.
func (s *Service) List(ctx context.Context, filter Filter) ([]models.Message, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return s.visible(active, filter), nil
}

// ListThreads groups the filtered list into thread rows. Totals count every
// active member of the thread, not only the filtered ones.
func (s *Service) ListThreads(ctx context.Context, filter Filter) ([]models.ThreadSummary, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return thread.Summaries(active, s.visible(active, filter)), nil
}

// Get returns a message with derived fields. Archived messages are still
// reachable by id; deleted ones are not.
func (s *Service) Get(ctx context.Context, id string) (models.Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return models.Message{}, err
	}
	return derive(msg), nil
}

// View returns a message and marks it read
func (s *Service) View(ctx context.Context, id string) (models.Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return models.Message{}, err
	}

	if !msg.IsRead {
		if err := s.setFlags(ctx, id, store.BatchMarkRead, "mark message read"); err != nil {
			return models.Message{}, err
		}
		msg.IsRead = true
	}
	return derive(msg), nil
}

// MarkRead marks a message read. Marking a read message is a no-op.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.setFlags(ctx, id, store.BatchMarkRead, "mark message read")
}

// Archive removes a message from the active set. Archiving twice is a no-op.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.setFlags(ctx, id, store.BatchArchive, "archive message")
}

// MarkReplied records that a reply was sent: the message becomes read and no
// longer needs a reply. Delivery itself happens elsewhere.
func (s *Service) MarkReplied(ctx context.Context, id, content string) error {
	if strings.TrimSpace(content) == "" {
		return validation("reply content is empty")
	}

	if err := s.setFlags(ctx, id, store.BatchMarkReplied, "mark message replied"); err != nil {
		return err
	}

	s.logger.Info("reply recorded", "id", id, "length", len(content))
	return nil
}

// ThreadMessages returns the active members of a thread in time order.
// An unknown thread yields an empty slice.
func (s *Service) ThreadMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	active, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return thread.Messages(active, threadID), nil
}

// SummaryResult is the outcome of SummarizeThread
type SummaryResult struct {
	Summary   string `json:"summary"`
	Available bool   `json:"available"`
}

// SummarizeThread returns the summary of a message, or of the latest message
// of a thread when id names a thread. It never fails.
func (s *Service) SummarizeThread(ctx context.Context, id string) SummaryResult {
	unavailable := SummaryResult{Summary: summarizer.Unavailable}

	msgs, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("failed to load messages for summary", "id", id, "error", err)
		return unavailable
	}

	var members []models.Message
	for _, msg := range msgs {
		if msg.IsDeleted {
			continue
		}
		if msg.ID == id {
			return summaryOf(msg)
		}
		if msg.ThreadKey() == id && msg.Active() {
			members = append(members, msg)
		}
	}

	threads := thread.Group(members)
	if len(threads) == 0 {
		return unavailable
	}
	latest, _ := threads[0].Latest()
	return summaryOf(latest)
}

func summaryOf(msg models.Message) SummaryResult {
	summary := derive(msg).AISummary
	if summary == "" {
		return SummaryResult{Summary: summarizer.Unavailable}
	}
	return SummaryResult{Summary: summary, Available: true}
}

// load fetches a stored message, hiding deleted ones
func (s *Service) load(ctx context.Context, id string) (models.Message, error) {
	msg, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Message{}, storeError("get message", err)
	}
	if msg.IsDeleted {
		return models.Message{}, notFound(id)
	}
	return msg, nil
}

// setFlags applies op to a single message through the store's atomic path,
// so a concurrent writer's flags are never overwritten.
func (s *Service) setFlags(ctx context.Context, id string, op store.BatchOp, desc string) error {
	err := s.store.ApplyBatch(ctx, op, []string{id})
	if errors.Is(err, store.ErrNotFound) {
		return notFound(id)
	}
	if err != nil {
		return storeError(desc, err)
	}
	return nil
}

// active returns non-archived, non-deleted messages with derived fields, in
// insertion order.
func (s *Service) active(ctx context.Context) ([]models.Message, error) {
	msgs, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError("list messages", err)
	}

	active := make([]models.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Active() {
			active = append(active, derive(msg))
		}
	}
	return active, nil
}

func (s *Service) visible(active []models.Message, filter Filter) []models.Message {
	now := s.now()
	out := make([]models.Message, 0, len(active))
	for _, msg := range active {
		if filter.Match(msg, now) {
			out = append(out, msg)
		}
	}
	sortForList(out)
	return out
}

// derive fills in every derived field the stored record leaves empty.
// Supplied values always win.
func derive(msg models.Message) models.Message {
	if msg.IsDraft {
		msg.IsRead = true
		msg.NeedsReply = false
	}
	if msg.ReplyPriority == models.PriorityUnset {
		msg.ReplyPriority = classifier.PriorityOf(msg)
	}
	if msg.Category == "" {
		msg.Category = classifier.CategoryOf(msg)
	}
	if msg.AISummary == "" {
		msg.AISummary = summarizer.SummaryOf(msg)
	}
	if msg.EstimatedReplyTime == "" {
		msg.EstimatedReplyTime = classifier.EffortOf(msg)
	}
	return msg
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
