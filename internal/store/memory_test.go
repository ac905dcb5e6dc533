package store

import (
	"context"
	"testing"
	"time"

	"persona-chat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedCharacter(t *testing.T, s Store, ownerID uint, name string) *models.Character {
	t.Helper()
	character := &models.Character{
		OwnerID:      &ownerID,
		Name:         name,
		Description:  "test character",
		SystemPrompt: "You are " + name,
	}
	require.NoError(t, s.CreateCharacter(context.Background(), character))
	return character
}

func sharedCharacter(t *testing.T, s Store, name string) *models.Character {
	t.Helper()
	character := &models.Character{
		Name:         name,
		Description:  "shared preset",
		SystemPrompt: "You are " + name,
	}
	require.NoError(t, s.CreateCharacter(context.Background(), character))
	return character
}

func TestUserUniqueness(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "x"}))
	err := s.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCharacterVisibility(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	own := ownedCharacter(t, s, 1, "Mine")
	shared := sharedCharacter(t, s, "Preset")
	other := ownedCharacter(t, s, 2, "Theirs")

	listed, err := s.ListCharacters(ctx, 1)
	require.NoError(t, err)
	ids := make([]uint, 0, len(listed))
	for _, c := range listed {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, own.ID)
	assert.Contains(t, ids, shared.ID)
	assert.NotContains(t, ids, other.ID)

	// Direct fetch follows the same rules, guessed IDs included
	_, err = s.GetCharacter(ctx, 1, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetCharacter(ctx, 1, shared.ID)
	assert.NoError(t, err)
}

func TestSharedCharacterNotDeletableByNonOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	shared := sharedCharacter(t, s, "Preset")
	err := s.DeleteCharacter(ctx, 1, shared.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Still there
	_, err = s.GetCharacter(ctx, 1, shared.ID)
	assert.NoError(t, err)
}

func TestConversationOwnershipScoping(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	character := sharedCharacter(t, s, "Preset")
	conversation := &models.Conversation{UserID: 1, CharacterID: character.ID, Title: "t"}
	require.NoError(t, s.CreateConversation(ctx, conversation))

	_, err := s.AssertOwned(ctx, 1, conversation.ID)
	assert.NoError(t, err)

	// Another user cannot see, fetch or delete it
	_, err = s.AssertOwned(ctx, 2, conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetConversation(ctx, 2, conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteConversation(ctx, 2, conversation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := s.ListConversations(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDeleteConversationCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	character := sharedCharacter(t, s, "Preset")
	conversation := &models.Conversation{UserID: 1, CharacterID: character.ID}
	require.NoError(t, s.CreateConversation(ctx, conversation))

	for _, content := range []string{"one", "two"} {
		require.NoError(t, s.CreateMessage(ctx, &models.Message{
			ConversationID: conversation.ID,
			Role:           models.RoleUser,
			Content:        content,
		}))
	}

	require.NoError(t, s.DeleteConversation(ctx, 1, conversation.ID))

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMessageOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	character := sharedCharacter(t, s, "Preset")
	conversation := &models.Conversation{UserID: 1, CharacterID: character.ID}
	require.NoError(t, s.CreateConversation(ctx, conversation))

	base := time.Now()
	for i, content := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateMessage(ctx, &models.Message{
			ConversationID: conversation.ID,
			Role:           models.RoleUser,
			Content:        content,
			CreatedAt:      base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	assert.Equal(t, "third", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestListConversationsByRecency(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	character := sharedCharacter(t, s, "Preset")

	older := &models.Conversation{UserID: 1, CharacterID: character.ID, Title: "older", LastMessageAt: time.Now().Add(-time.Hour)}
	newer := &models.Conversation{UserID: 1, CharacterID: character.ID, Title: "newer", LastMessageAt: time.Now()}
	require.NoError(t, s.CreateConversation(ctx, older))
	require.NoError(t, s.CreateConversation(ctx, newer))

	listed, err := s.ListConversations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "newer", listed[0].Title)
	assert.Equal(t, "older", listed[1].Title)
	require.NotNil(t, listed[0].Character)
	assert.Equal(t, character.ID, listed[0].Character.ID)

	// Touching the older one moves it to the front
	require.NoError(t, s.TouchConversation(ctx, older.ID))
	listed, err = s.ListConversations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "older", listed[0].Title)
}
