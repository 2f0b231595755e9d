// Package storetest holds a behavioural suite shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/pkg/models"
)

// Factory returns a fresh, empty store
type Factory func(t *testing.T) store.Store

var received = time.Date(2025, 5, 4, 10, 30, 0, 0, time.UTC)

// Message builds a populated test message
func Message(id string) models.Message {
	return models.Message{
		ID:            id,
		From:          id + "@example.com",
		To:            "me@example.com",
		Subject:       "Subject " + id,
		Body:          "Body of " + id,
		ReceivedAt:    received,
		ThreadID:      "thread-" + id,
		NeedsReply:    true,
		ReplyPriority: models.PriorityHigh,
		Category:      "Report",
	}
}

// Run exercises the full Store contract
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertGetRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("a")
		require.NoError(t, s.Insert(ctx, &msg))
		assert.NotZero(t, msg.Seq)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, msg.ID, got.ID)
		assert.Equal(t, msg.From, got.From)
		assert.Equal(t, msg.Subject, got.Subject)
		assert.Equal(t, msg.Body, got.Body)
		assert.Equal(t, msg.ThreadID, got.ThreadID)
		assert.True(t, msg.ReceivedAt.Equal(got.ReceivedAt))
		assert.Equal(t, models.PriorityHigh, got.ReplyPriority)
		assert.Equal(t, "Report", got.Category)
		assert.True(t, got.NeedsReply)
		assert.Equal(t, msg.Seq, got.Seq)
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("dup")
		require.NoError(t, s.Insert(ctx, &msg))
		again := Message("dup")
		err := s.Insert(ctx, &again)
		assert.True(t, errors.Is(err, store.ErrAlreadyExists), "got %v", err)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "nope")
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	})

	t.Run("ListInsertionOrder", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, id := range []string{"c", "a", "b"} {
			msg := Message(id)
			require.NoError(t, s.Insert(ctx, &msg))
		}

		msgs, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "c", msgs[0].ID)
		assert.Equal(t, "a", msgs[1].ID)
		assert.Equal(t, "b", msgs[2].ID)
		assert.Less(t, msgs[0].Seq, msgs[1].Seq)
		assert.Less(t, msgs[1].Seq, msgs[2].Seq)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		msgs, err := newStore(t).List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("Update", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("u")
		require.NoError(t, s.Insert(ctx, &msg))

		msg.Body = "edited"
		msg.IsRead = true
		msg.ReplyPriority = models.PriorityUnset
		require.NoError(t, s.Update(ctx, msg))

		got, err := s.Get(ctx, "u")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Body)
		assert.True(t, got.IsRead)
		assert.Equal(t, models.PriorityUnset, got.ReplyPriority)
		assert.Equal(t, msg.Seq, got.Seq)

		err = s.Update(ctx, Message("ghost"))
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("d")
		require.NoError(t, s.Insert(ctx, &msg))
		require.NoError(t, s.Delete(ctx, "d"))

		_, err := s.Get(ctx, "d")
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

		msgs, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, msgs)

		err = s.Delete(ctx, "d")
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	})

	t.Run("ApplyBatch", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, id := range []string{"x", "y", "z"} {
			msg := Message(id)
			require.NoError(t, s.Insert(ctx, &msg))
		}

		require.NoError(t, s.ApplyBatch(ctx, store.BatchMarkRead, []string{"x", "y"}))
		require.NoError(t, s.ApplyBatch(ctx, store.BatchArchive, []string{"y"}))
		require.NoError(t, s.ApplyBatch(ctx, store.BatchDelete, []string{"z"}))
		require.NoError(t, s.ApplyBatch(ctx, store.BatchArchive, []string{"y"}))

		x, err := s.Get(ctx, "x")
		require.NoError(t, err)
		assert.True(t, x.IsRead)
		assert.False(t, x.IsArchived)

		y, err := s.Get(ctx, "y")
		require.NoError(t, err)
		assert.True(t, y.IsRead)
		assert.True(t, y.IsArchived)

		z, err := s.Get(ctx, "z")
		require.NoError(t, err)
		assert.True(t, z.IsDeleted)
		assert.False(t, z.IsRead)
	})

	t.Run("ApplyBatchAllOrNothing", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("keep")
		require.NoError(t, s.Insert(ctx, &msg))

		err := s.ApplyBatch(ctx, store.BatchArchive, []string{"keep", "missing"})
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

		got, err := s.Get(ctx, "keep")
		require.NoError(t, err)
		assert.False(t, got.IsArchived)
	})

	t.Run("UpdateKeepsTerminalFlags", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("t")
		require.NoError(t, s.Insert(ctx, &msg))
		stale := msg
		require.NoError(t, s.ApplyBatch(ctx, store.BatchArchive, []string{"t"}))

		stale.Body = "edited"
		require.NoError(t, s.Update(ctx, stale))

		got, err := s.Get(ctx, "t")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Body)
		assert.True(t, got.IsArchived)
	})

	t.Run("ApplyBatchMarkReplied", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		msg := Message("r")
		require.NoError(t, s.Insert(ctx, &msg))
		require.NoError(t, s.ApplyBatch(ctx, store.BatchMarkReplied, []string{"r"}))

		got, err := s.Get(ctx, "r")
		require.NoError(t, err)
		assert.True(t, got.IsRead)
		assert.False(t, got.NeedsReply)
		assert.Equal(t, models.PriorityHigh, got.ReplyPriority)
	})

	t.Run("ApplyBatchTombstones", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, id := range []string{"live", "gone"} {
			msg := Message(id)
			require.NoError(t, s.Insert(ctx, &msg))
		}
		require.NoError(t, s.ApplyBatch(ctx, store.BatchDelete, []string{"gone"}))

		for _, op := range []store.BatchOp{store.BatchArchive, store.BatchMarkRead, store.BatchMarkReplied} {
			err := s.ApplyBatch(ctx, op, []string{"live", "gone"})
			assert.True(t, errors.Is(err, store.ErrNotFound), "%s: got %v", op, err)
		}
		require.NoError(t, s.ApplyBatch(ctx, store.BatchDelete, []string{"gone"}))

		live, err := s.Get(ctx, "live")
		require.NoError(t, err)
		assert.False(t, live.IsArchived)
		assert.False(t, live.IsRead)

		gone, err := s.Get(ctx, "gone")
		require.NoError(t, err)
		assert.True(t, gone.IsDeleted)
		assert.False(t, gone.IsArchived)
		assert.False(t, gone.IsRead)
	})

	t.Run("ApplyBatchEmpty", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.ApplyBatch(context.Background(), store.BatchDelete, nil))
	})
}
