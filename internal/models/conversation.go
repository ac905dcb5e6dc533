package models

import (
	"time"
)

// Conversation is an ordered thread of messages between a user and one character
type Conversation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	CharacterID   uint      `gorm:"index;not null" json:"character_id"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateConversationRequest is the request structure for starting a chat
type CreateConversationRequest struct {
	CharacterID uint `json:"character_id" binding:"required"`
}

// ConversationWithCharacter pairs a conversation with its character for list views
type ConversationWithCharacter struct {
	Conversation
	Character *Character `json:"character,omitempty"`
}

// ConversationDetail is the full fetch: conversation, character and ordered messages
type ConversationDetail struct {
	Conversation
	Character Character `json:"character"`
	Messages  []Message `json:"messages"`
}
