package store

import (
	"context"
	"errors"
	"time"

	"persona-chat/backend/internal/models"

	"gorm.io/gorm"
)

// GormStore implements Store on a relational database through GORM
type GormStore struct {
	db *gorm.DB
}

// NewGormStore runs migrations and returns a Store backed by db
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Character{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	var existing models.User
	result := s.db.WithContext(ctx).Where("username = ?", user.Username).First(&existing)
	if result.Error == nil {
		return ErrDuplicate
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &user, nil
}

func (s *GormStore) ListCharacters(ctx context.Context, userID uint) ([]models.Character, error) {
	var characters []models.Character
	result := s.db.WithContext(ctx).
		Where("owner_id = ? OR owner_id IS NULL", userID).
		Order("created_at").
		Find(&characters)
	if result.Error != nil {
		return nil, result.Error
	}
	return characters, nil
}

func (s *GormStore) GetCharacter(ctx context.Context, userID, id uint) (*models.Character, error) {
	var character models.Character
	result := s.db.WithContext(ctx).
		Where("id = ? AND (owner_id = ? OR owner_id IS NULL)", id, userID).
		First(&character)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &character, nil
}

func (s *GormStore) CreateCharacter(ctx context.Context, character *models.Character) error {
	return s.db.WithContext(ctx).Create(character).Error
}

func (s *GormStore) DeleteCharacter(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, userID).
		Delete(&models.Character{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountCharacters(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&models.Character{}).Count(&count)
	return count, result.Error
}

func (s *GormStore) ListConversations(ctx context.Context, userID uint) ([]models.ConversationWithCharacter, error) {
	var conversations []models.Conversation
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Find(&conversations)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]models.ConversationWithCharacter, 0, len(conversations))
	for _, conv := range conversations {
		entry := models.ConversationWithCharacter{Conversation: conv}
		var character models.Character
		if err := s.db.WithContext(ctx).First(&character, conv.CharacterID).Error; err == nil {
			entry.Character = &character
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *GormStore) GetConversation(ctx context.Context, userID, id uint) (*models.ConversationDetail, error) {
	conversation, err := s.AssertOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var character models.Character
	if err := s.db.WithContext(ctx).First(&character, conversation.CharacterID).Error; err != nil {
		return nil, translate(err)
	}

	messages, err := s.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ConversationDetail{
		Conversation: *conversation,
		Character:    character,
		Messages:     messages,
	}, nil
}

func (s *GormStore) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	now := time.Now()
	if conversation.LastMessageAt.IsZero() {
		conversation.LastMessageAt = now
	}
	return s.db.WithContext(ctx).Create(conversation).Error
}

func (s *GormStore) DeleteConversation(ctx context.Context, userID, id uint) error {
	if _, err := s.AssertOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, id).Error
	})
}

func (s *GormStore) UpdateConversationTitle(ctx context.Context, id uint, title string) error {
	return s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("title", title).Error
}

func (s *GormStore) TouchConversation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", time.Now()).Error
}

func (s *GormStore) AssertOwned(ctx context.Context, userID, conversationID uint) (*models.Conversation, error) {
	var conversation models.Conversation
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, userID).
		First(&conversation)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &conversation, nil
}

func (s *GormStore) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	result := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at, id").
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

func (s *GormStore) CreateMessage(ctx context.Context, message *models.Message) error {
	return s.db.WithContext(ctx).Create(message).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
