package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamer replays canned deltas, or fails partway through when failAfter
// is set.
type fakeStreamer struct {
	deltas    []string
	failAfter int
	err       error

	prompts [][]models.PromptMessage
}

func (f *fakeStreamer) StreamCompletion(_ context.Context, prompt []models.PromptMessage, onDelta func(string) error) error {
	f.prompts = append(f.prompts, prompt)
	for i, delta := range f.deltas {
		if f.err != nil && i == f.failAfter {
			return f.err
		}
		if err := onDelta(delta); err != nil {
			return err
		}
	}
	if f.err != nil && f.failAfter >= len(f.deltas) {
		return f.err
	}
	return nil
}

// collectSink records forwarded deltas
type collectSink struct {
	deltas []string
}

func (c *collectSink) Delta(content string) error {
	c.deltas = append(c.deltas, content)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

type chatFixture struct {
	store    *store.MemoryStore
	svc      *ChatService
	streamer *fakeStreamer
	convID   uint
	userID   uint
}

func newChatFixture(t *testing.T, streamer *fakeStreamer) *chatFixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	character := &models.Character{
		Name:         "Socrates",
		Description:  "philosopher",
		SystemPrompt: "You are Socrates.",
	}
	require.NoError(t, s.CreateCharacter(ctx, character))

	conversation := &models.Conversation{
		UserID:      1,
		CharacterID: character.ID,
		Title:       "Chat with Socrates",
	}
	require.NoError(t, s.CreateConversation(ctx, conversation))

	return &chatFixture{
		store:    s,
		svc:      NewChatService(s, streamer, testLogger()),
		streamer: streamer,
		convID:   conversation.ID,
		userID:   1,
	}
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"Know ", "thyself."}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	sink := &collectSink{}
	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "Tell me something wise", sink))

	messages, err := fx.store.ListMessages(ctx, fx.convID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "Tell me something wise", messages[0].Content)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Know thyself.", messages[1].Content)

	// The persisted reply is exactly the concatenation of relayed deltas
	assert.Equal(t, messages[1].Content, strings.Join(sink.deltas, ""))
}

func TestSendMessagePromptShape(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"Indeed."}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "First question", sinkDiscard{}))
	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "Second question", sinkDiscard{}))

	require.Len(t, fx.streamer.prompts, 2)

	first := fx.streamer.prompts[0]
	require.Len(t, first, 2)
	assert.Equal(t, models.RoleSystem, first[0].Role)
	assert.Equal(t, "You are Socrates.", first[0].Content)
	assert.Equal(t, models.RoleUser, first[1].Role)

	// Second send carries the whole transcript in order, system entry first
	second := fx.streamer.prompts[1]
	require.Len(t, second, 4)
	assert.Equal(t, models.RoleSystem, second[0].Role)
	assert.Equal(t, "First question", second[1].Content)
	assert.Equal(t, "Indeed.", second[2].Content)
	assert.Equal(t, "Second question", second[3].Content)
}

type sinkDiscard struct{}

func (sinkDiscard) Delta(string) error { return nil }

func TestSendMessageEmptyContent(t *testing.T) {
	fx := newChatFixture(t, &fakeStreamer{})
	ctx := context.Background()

	err := fx.svc.SendMessage(ctx, fx.userID, fx.convID, "   \n\t ", sinkDiscard{})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// Nothing was written
	messages, err := fx.store.ListMessages(ctx, fx.convID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	fx := newChatFixture(t, &fakeStreamer{})

	err := fx.svc.SendMessage(context.Background(), fx.userID, fx.convID+100, "hello", sinkDiscard{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendMessageForeignConversation(t *testing.T) {
	fx := newChatFixture(t, &fakeStreamer{})
	ctx := context.Background()

	err := fx.svc.SendMessage(ctx, fx.userID+1, fx.convID, "hello", sinkDiscard{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	messages, err := fx.store.ListMessages(ctx, fx.convID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSendMessageStreamFailureKeepsUserTurn(t *testing.T) {
	streamer := &fakeStreamer{
		deltas:    []string{"partial ", "text"},
		failAfter: 1,
		err:       errors.New("upstream reset"),
	}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	sink := &collectSink{}
	err := fx.svc.SendMessage(ctx, fx.userID, fx.convID, "hello", sink)
	assert.ErrorIs(t, err, ErrStreamFailed)

	// Partial reply is discarded but the user turn survives
	messages, listErr := fx.store.ListMessages(ctx, fx.convID)
	require.NoError(t, listErr)
	require.Len(t, messages, 1)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)

	// Deltas emitted before the failure were still forwarded
	assert.Equal(t, []string{"partial "}, sink.deltas)
}

func TestSendMessageAutoTitle(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"The unexamined life is not worth living."}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "hello", sinkDiscard{}))

	conversation, err := fx.store.AssertOwned(ctx, fx.userID, fx.convID)
	require.NoError(t, err)
	assert.Equal(t, "The unexamined life is not worth living.", conversation.Title)
}

func TestSendMessageAutoTitleWithGreetingSeed(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"A fine question."}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	// Seed greeting, as conversation creation does
	require.NoError(t, fx.store.CreateMessage(ctx, &models.Message{
		ConversationID: fx.convID,
		Role:           models.RoleAssistant,
		Content:        "Greetings, friend.",
	}))

	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "hello", sinkDiscard{}))

	conversation, err := fx.store.AssertOwned(ctx, fx.userID, fx.convID)
	require.NoError(t, err)
	assert.Equal(t, "A fine question.", conversation.Title)
}

func TestSendMessageNoRetitleAfterFirstExchange(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"Second reply."}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	for i, m := range []models.Message{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
		{Role: models.RoleUser, Content: "followup"},
	} {
		m.ConversationID = fx.convID
		m.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, fx.store.CreateMessage(ctx, &m))
	}

	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "another", sinkDiscard{}))

	conversation, err := fx.store.AssertOwned(ctx, fx.userID, fx.convID)
	require.NoError(t, err)
	assert.Equal(t, "Chat with Socrates", conversation.Title)
}

func TestSendMessageBlankReplyKeepsTitle(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"  \n  "}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "hello", sinkDiscard{}))

	conversation, err := fx.store.AssertOwned(ctx, fx.userID, fx.convID)
	require.NoError(t, err)
	assert.Equal(t, "Chat with Socrates", conversation.Title)
}

func TestSendMessageAdvancesLastMessageAt(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"ok"}}
	fx := newChatFixture(t, streamer)
	ctx := context.Background()

	before, err := fx.store.AssertOwned(ctx, fx.userID, fx.convID)
	require.NoError(t, err)

	require.NoError(t, fx.svc.SendMessage(ctx, fx.userID, fx.convID, "hello", sinkDiscard{}))

	after, err := fx.store.AssertOwned(ctx, fx.userID, fx.convID)
	require.NoError(t, err)
	assert.True(t, after.LastMessageAt.After(before.LastMessageAt))
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"short reply", "Hello there", "Hello there"},
		{"first line only", "First line\nand more text after", "First line"},
		{"exactly forty runes", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"truncated with marker", strings.Repeat("a", 45), strings.Repeat("a", 40) + "..."},
		{"newline beyond source window ignored", strings.Repeat("b", 60) + "\nrest", strings.Repeat("b", 40) + "..."},
		{"multibyte runes", strings.Repeat("日", 45), strings.Repeat("日", 40) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.reply))
		})
	}
}
