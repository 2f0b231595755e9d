package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/emailtriage/internal/store"
	"github.com/mixelka/emailtriage/internal/store/storetest"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()

	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestDB(t, filepath.Join(t.TempDir(), "triage.db"))
	})
}

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "triage.db")
	db := openTestDB(t, path)
	assert.NoError(t, db.Ping())
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "triage.db"))
	assert.NoError(t, db.Migrate(context.Background()))
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "triage.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	msg := storetest.Message("persisted")
	require.NoError(t, db.Insert(ctx, &msg))
	require.NoError(t, db.Close())

	db = openTestDB(t, path)
	got, err := db.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, msg.Subject, got.Subject)
}

func TestApplyBatchUnknownOp(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "triage.db"))
	err := db.ApplyBatch(context.Background(), store.BatchOp("explode"), []string{"x"})
	assert.Error(t, err)
}
