package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	token, err := store.Create(ctx, 42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	token, err := store.Create(ctx, 7, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op
	assert.NoError(t, store.Delete(ctx, token))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	token, err := store.Create(ctx, 7, -time.Second)
	require.NoError(t, err)

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTokensAreUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Create(ctx, 1, time.Hour)
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
