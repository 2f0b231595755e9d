// Package store defines the message store contract and its memory, redis and
// remote implementations. The sqlite implementation lives in the database
// package.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mixelka/emailtriage/pkg/models"
)

// ErrNotFound is returned when a message is not in the store
var ErrNotFound = errors.New("message not found")

// ErrAlreadyExists is returned when inserting a duplicate id
var ErrAlreadyExists = errors.New("message already exists")

// ErrUnavailable is returned when the store backend cannot be reached
var ErrUnavailable = errors.New("store unavailable")

// Store holds the canonical message records.
// List returns messages in insertion order, Insert assigns Seq. Update keeps
// Seq and never clears IsArchived or IsDeleted: both flags are terminal.
type Store interface {
	List(ctx context.Context) ([]models.Message, error)
	Get(ctx context.Context, id string) (models.Message, error)
	Insert(ctx context.Context, msg *models.Message) error
	Update(ctx context.Context, msg models.Message) error
	Delete(ctx context.Context, id string) error
	// ApplyBatch applies op to every id as one unit. If any id is missing
	// it returns ErrNotFound and nothing is changed. Deleted records count as
	// missing for every op but BatchDelete.
	ApplyBatch(ctx context.Context, op BatchOp, ids []string) error
	Close() error
}

// BatchOp is a flag mutation applied to a set of messages
type BatchOp string

const (
	BatchMarkRead    BatchOp = "mark_read"
	BatchArchive     BatchOp = "archive"
	BatchDelete      BatchOp = "delete" // soft delete, the record is kept
	BatchMarkReplied BatchOp = "mark_replied"
)

// ParseBatchOp validates a batch operation name
func ParseBatchOp(s string) (BatchOp, error) {
	switch op := BatchOp(s); op {
	case BatchMarkRead, BatchArchive, BatchDelete, BatchMarkReplied:
		return op, nil
	default:
		return "", fmt.Errorf("unknown batch operation %q", s)
	}
}

// Apply sets the flag for op on msg
func (op BatchOp) Apply(msg *models.Message) {
	switch op {
	case BatchMarkRead:
		msg.IsRead = true
	case BatchArchive:
		msg.IsArchived = true
	case BatchDelete:
		msg.IsDeleted = true
	case BatchMarkReplied:
		msg.IsRead = true
		msg.NeedsReply = false
	}
}

// Admits reports whether op may touch msg. Tombstones only accept a repeated
// delete.
func (op BatchOp) Admits(msg models.Message) bool {
	return op == BatchDelete || !msg.IsDeleted
}

// KeepTerminal carries the terminal flags of stored over to msg
func KeepTerminal(msg *models.Message, stored models.Message) {
	msg.IsArchived = msg.IsArchived || stored.IsArchived
	msg.IsDeleted = msg.IsDeleted || stored.IsDeleted
}
