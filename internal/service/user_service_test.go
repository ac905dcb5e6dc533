package service

import (
	"context"
	"strings"
	"testing"

	"persona-chat/backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)

	// Login is case- and whitespace-insensitive on the username
	got, err := svc.Login(ctx, "  ALICE ", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "alice", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "supersecret")
	require.NoError(t, err)

	// Normalization applies before the uniqueness check
	_, err = svc.Register(ctx, " Alice ", "othersecret")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, "ab", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.Register(ctx, strings.Repeat("a", 51), "supersecret")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.Register(ctx, "alice", "short")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestPasswordHashFormat(t *testing.T) {
	hash, err := HashPassword("supersecret")
	require.NoError(t, err)

	saltHex, hashHex, ok := strings.Cut(hash, ":")
	require.True(t, ok)
	assert.Len(t, saltHex, 32)
	assert.Len(t, hashHex, 64)

	assert.True(t, CheckPasswordHash("supersecret", hash))
	assert.False(t, CheckPasswordHash("supersecreT", hash))
	assert.False(t, CheckPasswordHash("supersecret", "not-a-credential"))

	// Fresh salt per call
	again, err := HashPassword("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestPasswordNeverStoredInPlain(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore())

	user, err := svc.Register(context.Background(), "alice", "supersecret")
	require.NoError(t, err)
	assert.NotContains(t, user.PasswordHash, "supersecret")
}
