package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mixelka/emailtriage/internal/store"
)

// BulkArchive archives every id as one unit
func (s *Service) BulkArchive(ctx context.Context, ids []string) error {
	return s.Bulk(ctx, store.BatchArchive, ids)
}

// BulkMarkRead marks every id read as one unit
func (s *Service) BulkMarkRead(ctx context.Context, ids []string) error {
	return s.Bulk(ctx, store.BatchMarkRead, ids)
}

// BulkDelete deletes every id as one unit. Deleted records are kept as
// tombstones so repeating the call succeeds.
func (s *Service) BulkDelete(ctx context.Context, ids []string) error {
	return s.Bulk(ctx, store.BatchDelete, ids)
}

// Bulk applies op to ids. Either every id is applied or none is: an empty,
// unknown or deleted id fails the whole batch with ErrValidation. A deleted
// id is only accepted by a repeated delete.
func (s *Service) Bulk(ctx context.Context, op store.BatchOp, ids []string) error {
	if op == store.BatchMarkReplied {
		return validation("%s requires reply content", op)
	}

	unique, err := normalizeIDs(ids)
	if err != nil {
		return err
	}
	if len(unique) == 0 {
		return nil
	}

	err = s.store.ApplyBatch(ctx, op, unique)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err != nil {
		return storeError(fmt.Sprintf("apply %s", op), err)
	}

	s.logger.Info("bulk operation applied", "op", op, "count", len(unique))
	return nil
}

// normalizeIDs drops duplicates and rejects blank ids
func normalizeIDs(ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, validation("id at position %d is empty", i)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique, nil
}
