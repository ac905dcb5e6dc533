package service

import (
	"context"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/store"
	"persona-chat/backend/pkg/logger"
)

// ConversationService handles conversation lifecycle
type ConversationService struct {
	store store.Store
	log   *logger.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(s store.Store, log *logger.Logger) *ConversationService {
	return &ConversationService{store: s, log: log}
}

// CreateConversation starts a chat with a character. When the character has a
// greeting it is seeded as the first assistant message; a greeting insert
// failure leaves the conversation usable and is only logged.
func (s *ConversationService) CreateConversation(ctx context.Context, userID, characterID uint) (*models.Conversation, error) {
	character, err := s.store.GetCharacter(ctx, userID, characterID)
	if err != nil {
		return nil, err
	}

	conversation := &models.Conversation{
		UserID:      userID,
		CharacterID: character.ID,
		Title:       "Chat with " + character.Name,
	}
	if err := s.store.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}

	if character.Greeting != "" {
		greeting := &models.Message{
			ConversationID: conversation.ID,
			Role:           models.RoleAssistant,
			Content:        character.Greeting,
		}
		if err := s.store.CreateMessage(ctx, greeting); err != nil {
			s.log.LogError(err, "failed to seed greeting message",
				"conversation_id", conversation.ID,
				"character_id", character.ID,
			)
		}
	}

	return conversation, nil
}

// ListConversations returns the user's conversations, most recent first
func (s *ConversationService) ListConversations(ctx context.Context, userID uint) ([]models.ConversationWithCharacter, error) {
	return s.store.ListConversations(ctx, userID)
}

// GetConversation returns a conversation with its character and ordered messages
func (s *ConversationService) GetConversation(ctx context.Context, userID, id uint) (*models.ConversationDetail, error) {
	return s.store.GetConversation(ctx, userID, id)
}

// DeleteConversation removes a conversation and all of its messages
func (s *ConversationService) DeleteConversation(ctx context.Context, userID, id uint) error {
	return s.store.DeleteConversation(ctx, userID, id)
}
