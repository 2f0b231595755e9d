package triage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mixelka/emailtriage/internal/classifier"
	"github.com/mixelka/emailtriage/internal/draft"
	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/pkg/models"
)

const (
	defaultDraftSubject = "New Message"
	defaultDraftSender  = "Me"
	replyPrefix         = "Re: "
)

// DraftInput is the payload of SaveDraft. ID may name an existing draft
// (edited in place), a received message (a reply draft is created) or
// nothing known (a standalone draft is created under that id).
type DraftInput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	To      string `json:"to"`
	Subject string `json:"subject"`
}

// DraftResult is the outcome of GenerateDraft
type DraftResult struct {
	Draft    string `json:"draft"`
	NotFound bool   `json:"notFound,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// GenerateDraft composes a reply for message id with text as the body.
// It never fails: a missing message or a store failure yields a labelled
// placeholder draft.
func (s *Service) GenerateDraft(ctx context.Context, id, text string) DraftResult {
	return s.generate(ctx, id, func(msg models.Message) string {
		return draft.Compose(msg, text)
	})
}

// GenerateIntentDraft composes a quick reply for message id from intent.
// Failures are reported the same way as in GenerateDraft.
func (s *Service) GenerateIntentDraft(ctx context.Context, id string, intent draft.Intent) DraftResult {
	return s.generate(ctx, id, func(msg models.Message) string {
		return draft.ComposeIntent(msg, intent)
	})
}

func (s *Service) generate(ctx context.Context, id string, compose func(models.Message) string) DraftResult {
	msg, err := s.Get(ctx, id)
	if isNotFound(err) {
		return DraftResult{Draft: draft.NotFoundDraft, NotFound: true}
	}
	if err != nil {
		s.logger.Warn("failed to load message for draft", "id", id, "error", err)
		return DraftResult{Draft: draft.FallbackDraft, Fallback: true}
	}
	return DraftResult{Draft: compose(msg)}
}

// SaveDraft creates or edits a draft. Drafts are always read and never need
// a reply.
func (s *Service) SaveDraft(ctx context.Context, in DraftInput) (models.Message, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return s.createDraft(ctx, newDraftID(), in)
	}

	existing, err := s.store.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.createDraft(ctx, id, in)
	case err != nil:
		return models.Message{}, storeError("get message", err)
	case existing.IsDeleted:
		return models.Message{}, notFound(id)
	case existing.IsDraft:
		return s.editDraft(ctx, existing, in)
	default:
		return s.createReplyDraft(ctx, existing, in)
	}
}

func (s *Service) editDraft(ctx context.Context, existing models.Message, in DraftInput) (models.Message, error) {
	existing.Body = in.Content
	if subject := strings.TrimSpace(in.Subject); subject != "" {
		existing.Subject = subject
	}
	if to := strings.TrimSpace(in.To); to != "" {
		existing.To = to
	}
	existing.AISummary = ""
	existing.EstimatedReplyTime = ""
	existing.IsRead = true
	existing.NeedsReply = false

	if err := s.store.Update(ctx, existing); err != nil {
		return models.Message{}, storeError("update draft", err)
	}

	s.logger.Debug("draft updated", "id", existing.ID)
	return derive(existing), nil
}

func (s *Service) createReplyDraft(ctx context.Context, source models.Message, in DraftInput) (models.Message, error) {
	msg := s.newDraft(newDraftID(), in.Content)
	msg.To = source.From
	if to := strings.TrimSpace(in.To); to != "" {
		msg.To = to
	}
	msg.Subject = replySubject(source.Subject)
	if subject := strings.TrimSpace(in.Subject); subject != "" {
		msg.Subject = subject
	}
	msg.ThreadID = source.ThreadKey()
	msg.InReplyTo = source.ID

	return s.insertDraft(ctx, msg)
}

func (s *Service) createDraft(ctx context.Context, id string, in DraftInput) (models.Message, error) {
	to := strings.TrimSpace(in.To)
	if to == "" {
		return models.Message{}, validation("draft recipient is empty")
	}

	msg := s.newDraft(id, in.Content)
	msg.To = to
	msg.Subject = strings.TrimSpace(in.Subject)
	if msg.Subject == "" {
		msg.Subject = defaultDraftSubject
	}

	return s.insertDraft(ctx, msg)
}

func (s *Service) newDraft(id, content string) models.Message {
	from := s.session.Owner
	if from == "" {
		from = defaultDraftSender
	}
	return models.Message{
		ID:            id,
		From:          from,
		Body:          content,
		ReceivedAt:    s.now(),
		IsRead:        true,
		IsDraft:       true,
		NeedsReply:    false,
		ReplyPriority: models.PriorityLow,
		Category:      classifier.CategoryGeneral,
	}
}

func (s *Service) insertDraft(ctx context.Context, msg models.Message) (models.Message, error) {
	err := s.store.Insert(ctx, &msg)
	if errors.Is(err, store.ErrAlreadyExists) {
		return models.Message{}, validation("draft id %s already exists", msg.ID)
	}
	if err != nil {
		return models.Message{}, storeError("save draft", err)
	}

	s.logger.Info("draft saved", "id", msg.ID, "in_reply_to", msg.InReplyTo)
	return derive(msg), nil
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), strings.ToLower(replyPrefix)) {
		return subject
	}
	return replyPrefix + subject
}

func newDraftID() string {
	return "draft-" + uuid.NewString()
}
