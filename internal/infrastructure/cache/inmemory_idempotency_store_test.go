package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new key as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "return-1", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew, "new key should return true")
	})

	t.Run("returns false for already processed key", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "return-2", 1*time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "return-2", 1*time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "already processed key should return false")
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "return-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "return-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew, "expired key should be reprocessable")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("returns false for unknown key", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "unknown-key")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("returns true for processed key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "processed-key", 1*time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "processed-key")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("returns false for expired key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "expired-key", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "expired-key")
		require.NoError(t, err)
		assert.False(t, processed, "expired key should return false")
	})
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	// Safe to call again
	require.NoError(t, store.Close())
}
