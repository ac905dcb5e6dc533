package service

import (
	"context"
	"testing"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConversationSeedsGreeting(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewConversationService(s, testLogger())
	ctx := context.Background()

	character := &models.Character{
		Name:         "Socrates",
		Description:  "philosopher",
		SystemPrompt: "You are Socrates.",
		Greeting:     "Greetings, friend. What shall we examine today?",
	}
	require.NoError(t, s.CreateCharacter(ctx, character))

	conversation, err := svc.CreateConversation(ctx, 1, character.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chat with Socrates", conversation.Title)

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleAssistant, messages[0].Role)
	assert.Equal(t, character.Greeting, messages[0].Content)
}

func TestCreateConversationNoGreeting(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewConversationService(s, testLogger())
	ctx := context.Background()

	character := &models.Character{
		Name:         "Terse",
		Description:  "says little",
		SystemPrompt: "Be terse.",
	}
	require.NoError(t, s.CreateCharacter(ctx, character))

	conversation, err := svc.CreateConversation(ctx, 1, character.ID)
	require.NoError(t, err)

	messages, err := s.ListMessages(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCreateConversationUnknownCharacter(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewConversationService(s, testLogger())

	_, err := svc.CreateConversation(context.Background(), 1, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateConversationForeignCharacter(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewConversationService(s, testLogger())
	ctx := context.Background()

	owner := uint(2)
	character := &models.Character{
		OwnerID:      &owner,
		Name:         "Private",
		Description:  "not yours",
		SystemPrompt: "x",
	}
	require.NoError(t, s.CreateCharacter(ctx, character))

	_, err := svc.CreateConversation(ctx, 1, character.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetConversationDetail(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewConversationService(s, testLogger())
	ctx := context.Background()

	character := &models.Character{
		Name:         "Socrates",
		Description:  "philosopher",
		SystemPrompt: "You are Socrates.",
		Greeting:     "Greetings.",
	}
	require.NoError(t, s.CreateCharacter(ctx, character))

	conversation, err := svc.CreateConversation(ctx, 1, character.ID)
	require.NoError(t, err)

	detail, err := svc.GetConversation(ctx, 1, conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.ID, detail.Conversation.ID)
	assert.Equal(t, character.ID, detail.Character.ID)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "Greetings.", detail.Messages[0].Content)

	_, err = svc.GetConversation(ctx, 2, conversation.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
