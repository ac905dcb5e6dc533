package service

import (
	"context"
	"errors"

	"persona-chat/backend/internal/models"
	"persona-chat/backend/internal/store"
)

var (
	ErrCharacterNameRequired   = errors.New("character name is required")
	ErrCharacterDescRequired   = errors.New("character description is required")
	ErrCharacterPromptRequired = errors.New("character system prompt is required")
)

// CharacterService handles character CRUD with per-user scoping
type CharacterService struct {
	store store.Store
}

// NewCharacterService creates a new character service
func NewCharacterService(s store.Store) *CharacterService {
	return &CharacterService{store: s}
}

// CreateCharacter creates a character owned by userID
func (s *CharacterService) CreateCharacter(ctx context.Context, userID uint, req *models.CreateCharacterRequest) (*models.Character, error) {
	if req.Name == "" {
		return nil, ErrCharacterNameRequired
	}
	if req.Description == "" {
		return nil, ErrCharacterDescRequired
	}
	if req.SystemPrompt == "" {
		return nil, ErrCharacterPromptRequired
	}

	owner := userID
	character := &models.Character{
		OwnerID:      &owner,
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
		Greeting:     req.Greeting,
		AvatarColor:  req.AvatarColor,
	}
	if err := s.store.CreateCharacter(ctx, character); err != nil {
		return nil, err
	}
	return character, nil
}

// ListCharacters returns the user's own characters plus the shared presets
func (s *CharacterService) ListCharacters(ctx context.Context, userID uint) ([]models.Character, error) {
	return s.store.ListCharacters(ctx, userID)
}

// GetCharacter returns a character visible to userID (own or shared)
func (s *CharacterService) GetCharacter(ctx context.Context, userID, id uint) (*models.Character, error) {
	return s.store.GetCharacter(ctx, userID, id)
}

// DeleteCharacter removes a character owned by userID. Shared presets cannot
// be deleted.
func (s *CharacterService) DeleteCharacter(ctx context.Context, userID, id uint) error {
	return s.store.DeleteCharacter(ctx, userID, id)
}
