package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/pkg/models"
)

const messageColumns = `seq, id, from_addr, to_addr, subject, body, snippet, received_at,
	is_read, is_draft, is_archived, is_deleted, thread_id, in_reply_to,
	needs_reply, reply_priority, category, ai_summary, estimated_reply_time`

var batchAssignments = map[store.BatchOp]string{
	store.BatchMarkRead:    "is_read = true",
	store.BatchArchive:     "is_archived = true",
	store.BatchDelete:      "is_deleted = true",
	store.BatchMarkReplied: "is_read = true, needs_reply = false",
}

var _ store.Store = (*DB)(nil)

// List returns all messages in insertion order
func (db *DB) List(ctx context.Context) ([]models.Message, error) {
	msgs := []models.Message{}
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY seq`
	if err := db.SelectContext(ctx, &msgs, query); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// Get returns a message by ID
func (db *DB) Get(ctx context.Context, id string) (models.Message, error) {
	var msg models.Message
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	err := db.GetContext(ctx, &msg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, store.ErrNotFound
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to get message: %w", err)
	}
	return msg, nil
}

// Insert creates a new message (returns ErrAlreadyExists on duplicate id)
func (db *DB) Insert(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("failed to create message: empty id")
	}

	query := `
		INSERT OR IGNORE INTO messages (id, from_addr, to_addr, subject, body, snippet, received_at,
			is_read, is_draft, is_archived, is_deleted, thread_id, in_reply_to,
			needs_reply, reply_priority, category, ai_summary, estimated_reply_time)
		VALUES (:id, :from_addr, :to_addr, :subject, :body, :snippet, :received_at,
			:is_read, :is_draft, :is_archived, :is_deleted, :thread_id, :in_reply_to,
			:needs_reply, :reply_priority, :category, :ai_summary, :estimated_reply_time)
	`
	result, err := db.NamedExecContext(ctx, query, msg)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	// Check if row was actually inserted (not ignored due to duplicate)
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrAlreadyExists
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	msg.Seq = seq
	return nil
}

// Update replaces all mutable fields of a message. Archived and deleted
// flags are never cleared.
func (db *DB) Update(ctx context.Context, msg models.Message) error {
	query := `
		UPDATE messages SET from_addr = :from_addr, to_addr = :to_addr, subject = :subject,
			body = :body, snippet = :snippet, received_at = :received_at,
			is_read = :is_read, is_draft = :is_draft, is_archived = (is_archived OR :is_archived),
			is_deleted = (is_deleted OR :is_deleted), thread_id = :thread_id, in_reply_to = :in_reply_to,
			needs_reply = :needs_reply, reply_priority = :reply_priority, category = :category,
			ai_summary = :ai_summary, estimated_reply_time = :estimated_reply_time
		WHERE id = :id
	`
	result, err := db.NamedExecContext(ctx, query, msg)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return requireRow(result, msg.ID)
}

// Delete removes a message permanently
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return requireRow(result, id)
}

// ApplyBatch sets the flags for op on every id inside one transaction
func (db *DB) ApplyBatch(ctx context.Context, op store.BatchOp, ids []string) error {
	assignment, ok := batchAssignments[op]
	if !ok {
		return fmt.Errorf("unknown batch operation %q", op)
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE messages SET ` + assignment + ` WHERE id = ?`
	if op != store.BatchDelete {
		query += ` AND is_deleted = false`
	}
	for _, id := range ids {
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to apply %s: %w", op, err)
		}
		if err := requireRow(result, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return nil
}
