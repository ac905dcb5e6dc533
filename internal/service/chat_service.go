package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"persona-chat/backend/internal/ai"
	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/logger"
	"persona-chat/backend/pkg/observability"
)

var (
	ErrEmptyMessage = errors.New("message content is required")
	// ErrStreamFailed wraps provider failures during generation
	ErrStreamFailed = errors.New("failed to generate response")
)

// Auto-title limits: the first titleSourceLen runes of the reply feed the
// title, capped at titleMaxLen runes plus an ellipsis marker.
const (
	titleSourceLen = 50
	titleMaxLen    = 40
)

// StreamSink receives pipeline output. Implementations are request-scoped; a
// non-nil error from Delta aborts the relay.
type StreamSink interface {
	Delta(content string) error
}

// ChatService runs the message-send pipeline: persist the user turn, assemble
// the prompt context, relay the completion stream, finalize the assistant
// turn.
//
// Concurrent sends to the same conversation are not serialized; two in-flight
// sends may interleave their persisted ordering and prompt against overlapping
// context snapshots.
type ChatService struct {
	store    store.Store
	streamer ai.ChatStreamer
	log      *logger.Logger
}

// NewChatService creates a new chat service
func NewChatService(s store.Store, streamer ai.ChatStreamer, log *logger.Logger) *ChatService {
	return &ChatService{store: s, streamer: streamer, log: log}
}

// SendMessage executes one message-send request. The user turn is persisted
// before the provider call and is never rolled back. On clean stream
// completion the accumulated assistant turn is persisted, the conversation is
// touched, and a first exchange derives the conversation title. A provider
// failure returns an error wrapping ErrStreamFailed and persists nothing
// beyond the user turn; deltas already forwarded to sink are the caller's
// concern. Cancelling ctx (client disconnect) aborts the provider call.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID uint, content string, sink StreamSink) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	conversation, err := s.store.AssertOwned(ctx, userID, conversationID)
	if err != nil {
		return err
	}

	character, err := s.store.GetCharacter(ctx, userID, conversation.CharacterID)
	if err != nil {
		return err
	}

	// The user turn goes in before any model call so the input survives a
	// generation failure.
	userMessage := &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        content,
	}
	if err := s.store.CreateMessage(ctx, userMessage); err != nil {
		return err
	}
	if err := s.store.TouchConversation(ctx, conversationID); err != nil {
		return err
	}

	history, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return err
	}
	prompt := AssemblePrompt(character.SystemPrompt, history)

	// Snapshot taken before generation decides auto-titling below: at most
	// the seed greeting plus this turn means this is the first real exchange.
	firstExchange := len(history) <= 2

	observability.StreamsStarted.Inc()
	var reply strings.Builder

	streamErr := s.streamer.StreamCompletion(ctx, prompt, func(delta string) error {
		reply.WriteString(delta)
		observability.DeltasRelayed.Inc()
		return sink.Delta(delta)
	})
	if streamErr != nil {
		observability.StreamsFailed.Inc()
		s.log.LogError(streamErr, "completion stream failed",
			"conversation_id", conversationID,
			"user_id", userID,
		)
		// Partial text is discarded; the user turn above stays persisted.
		return fmt.Errorf("%w: %v", ErrStreamFailed, streamErr)
	}

	assistantMessage := &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        reply.String(),
	}
	if err := s.store.CreateMessage(ctx, assistantMessage); err != nil {
		return err
	}
	if err := s.store.TouchConversation(ctx, conversationID); err != nil {
		return err
	}

	if firstExchange {
		if title := DeriveTitle(reply.String()); strings.TrimSpace(title) != "" {
			if err := s.store.UpdateConversationTitle(ctx, conversationID, title); err != nil {
				s.log.LogError(err, "failed to update conversation title",
					"conversation_id", conversationID,
				)
			}
		}
	}

	observability.StreamsCompleted.Inc()
	return nil
}

// AssemblePrompt builds the model prompt context: the synthesized system
// entry first, then the full transcript in creation order. The transcript is
// not windowed or summarized, so long conversations grow the prompt without
// bound.
func AssemblePrompt(systemPrompt string, history []models.Message) []models.PromptMessage {
	prompt := make([]models.PromptMessage, 0, len(history)+1)
	prompt = append(prompt, models.PromptMessage{
		Role:    models.RoleSystem,
		Content: systemPrompt,
	})
	for _, message := range history {
		prompt = append(prompt, models.PromptMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	return prompt
}

// DeriveTitle takes the first line of the reply's first 50 runes, truncated
// to 40 runes with an ellipsis marker when cut
func DeriveTitle(reply string) string {
	runes := []rune(reply)
	if len(runes) > titleSourceLen {
		runes = runes[:titleSourceLen]
	}
	line, _, _ := strings.Cut(string(runes), "\n")

	lineRunes := []rune(line)
	if len(lineRunes) > titleMaxLen {
		return string(lineRunes[:titleMaxLen]) + "..."
	}
	return line
}
