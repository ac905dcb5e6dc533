package models

import (
	"time"
)

// Character is a persona definition usable across many conversations.
// A nil OwnerID marks a shared preset readable by everyone.
type Character struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OwnerID      *uint     `gorm:"index" json:"owner_id,omitempty"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `gorm:"not null" json:"description"`
	SystemPrompt string    `gorm:"type:text;not null" json:"system_prompt"`
	Greeting     string    `gorm:"type:text" json:"greeting"`
	AvatarColor  string    `json:"avatar_color"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateCharacterRequest is the request structure for character creation
type CreateCharacterRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description" binding:"required"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
	Greeting     string `json:"greeting"`
	AvatarColor  string `json:"avatar_color"`
}
