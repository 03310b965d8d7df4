package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/mateovidal/spinmart-backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS kv_entries (
  key TEXT PRIMARY KEY,
  value BLOB,
  expires_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	store, err := New(db)
	require.NoError(t, err)
	return store
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "k1", []byte("payload"), 0))

	got, err := store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestWriteUpsertsExistingKey(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "k1", []byte("first"), 0))
	require.NoError(t, store.Write(ctx, "k1", []byte("second"), 0))

	got, err := store.Read(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestReadMissingKey(t *testing.T) {
	store := setupStore(t)

	_, err := store.Read(context.Background(), "absent")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestExpiredEntryReadsAsMissing(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Write(ctx, "k1", []byte("payload"), time.Minute))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.Read(ctx, "k1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// The lazy delete removed the row, so the miss is stable.
	_, err = store.Read(ctx, "k1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestClearRemovesKey(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "k1", []byte("payload"), 0))
	require.NoError(t, store.Clear(ctx, "k1"))

	_, err := store.Read(ctx, "k1")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestClearMissingKeyIsNoError(t *testing.T) {
	store := setupStore(t)
	assert.NoError(t, store.Clear(context.Background(), "absent"))
}
